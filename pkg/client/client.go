package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lz1998/RICQ/pkg/metrics"
	"github.com/lz1998/RICQ/pkg/push"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
	"github.com/lz1998/RICQ/pkg/wtlogin"
)

const defaultOutboundBuffer = 64

var nowFunc = time.Now

// Client 单个账号的协议客户端
// 连接由Start独占，其余方法可并发调用
type Client struct {
	engine  Engine
	handler Handler

	status    atomic.Uint32
	online    atomic.Bool
	startTime atomic.Int64

	outbound       *Broadcaster[[]byte]
	disconnect     *Broadcaster[struct{}]
	outboundBuffer int

	promisesMu sync.Mutex
	promises   map[int32]chan *Packet

	pushReqCache   *push.DedupCache
	pushTransCache *push.DedupCache
	groupSysCache  push.SystemMessageCache
	groupMsgParts  *push.GroupMessageBuilder
}

// NewClient 创建客户端
// 参数：
//   - engine：协议引擎
//   - handler：事件处理
//   - opt：选项，可为nil
func NewClient(engine Engine, handler Handler, opt *Options) *Client {
	if opt == nil {
		opt = &Options{}
	}
	if opt.OutboundBuffer <= 0 {
		opt.OutboundBuffer = defaultOutboundBuffer
	}
	c := &Client{
		engine:         engine,
		handler:        handler,
		outbound:       NewBroadcaster[[]byte](),
		disconnect:     NewBroadcaster[struct{}](),
		outboundBuffer: opt.OutboundBuffer,
		promises:       make(map[int32]chan *Packet),
		pushReqCache:   push.NewDedupCache("push_req", opt.PushCacheSize),
		pushTransCache: push.NewDedupCache("push_trans", opt.PushCacheSize),
		groupMsgParts:  push.NewGroupMessageBuilder(),
	}
	c.startTime.Store(nowFunc().Unix())
	return c
}

// Uin 当前账号
func (c *Client) Uin() int64 {
	return c.engine.Uin()
}

// Online 是否已登录
func (c *Client) Online() bool {
	return c.online.Load()
}

// StartTime 连接建立时间（秒）
func (c *Client) StartTime() int64 {
	return c.startTime.Load()
}

// Disconnected 订阅断线信号，用完需Close
func (c *Client) Disconnected() *Subscription[struct{}] {
	return c.disconnect.Subscribe(1)
}

// Send 将已编码的包交给网络循环发送
func (c *Client) Send(pkt []byte) error {
	if c.outbound.Send(pkt) == 0 {
		return ErrNotConnected
	}
	return nil
}

// SendAndWait 发送并等待相同seq的响应
func (c *Client) SendAndWait(ctx context.Context, seq int32, pkt []byte) (*Packet, error) {
	ch := make(chan *Packet, 1)
	c.promisesMu.Lock()
	c.promises[seq] = ch
	c.promisesMu.Unlock()
	defer c.removePromise(seq)

	done := c.Disconnected()
	defer done.Close()
	if err := c.Send(pkt); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-done.C:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) removePromise(seq int32) chan *Packet {
	c.promisesMu.Lock()
	defer c.promisesMu.Unlock()
	ch, ok := c.promises[seq]
	if !ok {
		return nil
	}
	delete(c.promises, seq)
	return ch
}

// SubmitLogin 发送登录包并解释响应，登录成功后标记在线
// 响应中的0x546会在调用方goroutine中求解
func (c *Client) SubmitLogin(ctx context.Context, seq int32, pkt []byte) (wtlogin.LoginResponse, error) {
	resp, err := c.SendAndWait(ctx, seq, pkt)
	if err != nil {
		return nil, err
	}
	status, tlvMap, key, err := c.engine.DecodeLoginResponse(resp)
	if err != nil {
		return nil, err
	}
	login, err := wtlogin.DecodeLoginResponse(status, tlvMap, key)
	if err != nil {
		return nil, err
	}
	if _, ok := login.(*wtlogin.LoginSuccess); ok {
		c.online.Store(true)
		log.Infof("[CLIENT] 登录成功: uin=%d", c.Uin())
	}
	return login, nil
}

// QueryQRCode 发送trans_emp请求并解释二维码状态
func (c *Client) QueryQRCode(ctx context.Context, seq int32, pkt []byte) (wtlogin.QRCodeState, error) {
	resp, err := c.SendAndWait(ctx, seq, pkt)
	if err != nil {
		return nil, err
	}
	sub, body, err := c.engine.DecodeTransEmpResponse(resp)
	if err != nil {
		return nil, err
	}
	return wtlogin.DecodeTransEmpResponse(sub, body)
}

func (c *Client) emit(e push.Event) {
	metrics.Events.WithLabelValues(e.Kind()).Inc()
	c.handler.Handle(e)
}
