package tcp_connection

import (
	"errors"
	"time"
)

const (
	// FrameHeadLen 帧长度前缀字节数，长度值包含前缀本身
	FrameHeadLen = 4
	// MaxFrameLen 单帧最大长度 8MB
	MaxFrameLen = 8 * 1024 * 1024

	DefaultDialTimeout     = 5 * time.Second
	DefaultKeepAlivePeriod = 30 * time.Second
)

var (
	ErrFrameTooShort = errors.New("frame length shorter than header")
	ErrEmptyFrame    = errors.New("empty frame payload")
	ErrFrameTooLarge = errors.New("frame too large")
)

// ClientOption 客户端连接选项
type ClientOption struct {
	Address         string        // host:port
	Proxy           string        // 可选，socks5://[user:pass@]host:port
	Timeout         time.Duration // 连接超时
	KeepAlive       bool          // 是否启用TCP KeepAlive
	KeepAlivePeriod time.Duration // KeepAlive间隔
}
