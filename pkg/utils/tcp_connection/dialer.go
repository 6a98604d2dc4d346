package tcp_connection

import (
	"context"
	"fmt"
	"net"
	"net/url"

	log "github.com/lz1998/RICQ/pkg/utils/logger"
	"golang.org/x/net/proxy"
)

// Dial 连接服务器，配置了Proxy时经由SOCKS5代理
// 参数：
//   - ctx：控制连接超时/取消
//   - opt：连接选项
func Dial(ctx context.Context, opt *ClientOption) (net.Conn, error) {
	if opt == nil || opt.Address == "" {
		return nil, fmt.Errorf("invalid client option")
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	period := opt.KeepAlivePeriod
	if period <= 0 {
		period = DefaultKeepAlivePeriod
	}
	if !opt.KeepAlive {
		period = -1
	}
	direct := &net.Dialer{Timeout: timeout, KeepAlive: period}

	var d proxy.ContextDialer = direct
	if opt.Proxy != "" {
		u, err := url.Parse(opt.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", opt.Proxy, err)
		}
		pd, err := proxy.FromURL(u, direct)
		if err != nil {
			return nil, fmt.Errorf("create proxy dialer: %w", err)
		}
		cd, ok := pd.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy dialer %T does not support context", pd)
		}
		d = cd
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := d.DialContext(ctx, "tcp", opt.Address)
	if err != nil {
		return nil, fmt.Errorf("connect to %s failed: %w", opt.Address, err)
	}
	log.Infof("[TCP] 已连接到%s: local=%s, proxy=%v", conn.RemoteAddr(), conn.LocalAddr(), opt.Proxy != "")
	return conn, nil
}
