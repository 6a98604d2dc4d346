package client

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/lz1998/RICQ/pkg/metrics"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
	"github.com/lz1998/RICQ/pkg/utils/tcp_connection"
)

// 网络循环退出原因
const (
	exitRead       = "read"
	exitWrite      = "write"
	exitDecode     = "decode"
	exitDisconnect = "disconnect"
)

// Start 在stream上运行网络循环，直到断线或Stop
// stream实现io.Closer时会在返回前关闭
// 退出后发出断线信号，若状态仍为Running则置为NetworkOffline
func (c *Client) Start(stream io.ReadWriter) {
	gen := uuid.NewString()
	c.startTime.Store(nowFunc().Unix())
	c.status.Store(uint32(NetworkStatusRunning))
	out := c.outbound.Subscribe(c.outboundBuffer)
	disconnect := c.disconnect.Subscribe(1)
	log.Infof("[NET] 网络循环已启动: gen=%s", gen)

	reason := exitDisconnect
	// 订阅前到达的Stop只留下了状态
	if c.GetStatus() == NetworkStatusRunning {
		reason = c.netLoop(stream, out, disconnect)
	}

	out.Close()
	disconnect.Close()
	if closer, ok := stream.(io.Closer); ok {
		_ = closer.Close()
	}
	c.disconnect.TrySend(struct{}{})
	c.status.CompareAndSwap(uint32(NetworkStatusRunning), uint32(NetworkStatusNetworkOffline))
	metrics.Disconnects.WithLabelValues(reason).Inc()
	log.Infof("[NET] 网络循环已退出: gen=%s, reason=%s, status=%s", gen, reason, c.GetStatus())
}

func (c *Client) netLoop(stream io.ReadWriter, out *Subscription[[]byte], disconnect *Subscription[struct{}]) string {
	inbound := make(chan []byte)
	readErr := make(chan error, 1)
	quit := make(chan struct{})
	defer close(quit)

	pending := newPacketQueue()
	defer pending.close()
	go c.processPackets(pending)

	go func() {
		fr := tcp_connection.NewFrameReader(stream)
		for {
			frame, err := fr.ReadFrame()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbound <- frame:
			case <-quit:
				return
			}
		}
	}()

	fw := tcp_connection.NewFrameWriter(stream)
	for {
		select {
		case frame := <-inbound:
			metrics.FramesIn.Inc()
			pkt, err := c.engine.DecodePacket(frame)
			if err != nil {
				metrics.DecodeFailures.Inc()
				log.Errorf("[NET] 解包失败: %v", err)
				return exitDecode
			}
			c.routeIncomePacket(pkt, pending)

		case frame := <-out.C:
			if err := fw.WriteFrame(frame); err != nil {
				log.Errorf("[NET] 写入帧失败: %v", err)
				return exitWrite
			}
			metrics.FramesOut.Inc()

		case <-disconnect.C:
			return exitDisconnect

		case err := <-readErr:
			if err == io.EOF {
				log.Info("[NET] 连接已被对端关闭")
			} else {
				log.Errorf("[NET] 读取帧失败: %v", err)
			}
			return exitRead
		}
	}
}

// Stop 断开连接并将状态置为status，可重复调用
// 状态先于断线信号写入，网络循环退出时不会覆盖
func (c *Client) Stop(status NetworkStatus) {
	c.status.Store(uint32(status))
	c.disconnect.TrySend(struct{}{})
	c.online.Store(false)
	log.Infof("[NET] 停止连接: status=%s", status)
}

// GetStatus 当前状态
func (c *Client) GetStatus() NetworkStatus {
	return NetworkStatus(c.status.Load())
}

// processPackets 按到达顺序逐个处理推送，队列关闭且取空后返回
// 处理函数阻塞（如在回调中SendAndWait）只会推迟后续推送，不影响网络循环
func (c *Client) processPackets(q *packetQueue) {
	for {
		pkt, ok := q.pop()
		if !ok {
			return
		}
		c.processIncomePacket(pkt)
	}
}

// packetQueue 无界FIFO，网络循环入队不会阻塞
type packetQueue struct {
	mu     sync.Mutex
	items  []*Packet
	closed bool
	notify chan struct{}
}

func newPacketQueue() *packetQueue {
	return &packetQueue{notify: make(chan struct{}, 1)}
}

func (q *packetQueue) push(pkt *Packet) {
	q.mu.Lock()
	q.items = append(q.items, pkt)
	q.mu.Unlock()
	q.wake()
}

func (q *packetQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *packetQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *packetQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// pop 取出队首，队列为空时等待；已关闭且为空时返回false
func (q *packetQueue) pop() (*Packet, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			pkt := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return pkt, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		<-q.notify
	}
}
