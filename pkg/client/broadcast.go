package client

import "sync"

// Broadcaster 多订阅者广播，每个订阅者拥有独立的缓冲通道
type Broadcaster[T any] struct {
	mu   sync.RWMutex
	subs map[*Subscription[T]]struct{}
}

// Subscription 订阅句柄，不再使用时必须Close
type Subscription[T any] struct {
	C    <-chan T
	c    chan T
	done chan struct{}
	once sync.Once
	b    *Broadcaster[T]
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Subscribe 订阅，只能收到订阅之后发送的值
func (b *Broadcaster[T]) Subscribe(buffer int) *Subscription[T] {
	c := make(chan T, buffer)
	s := &Subscription[T]{C: c, c: c, done: make(chan struct{}), b: b}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Close 取消订阅，阻塞在该订阅者上的Send会立即放弃本订阅者
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		close(s.done)
		s.b.mu.Lock()
		delete(s.b.subs, s)
		s.b.mu.Unlock()
	})
}

// Send 向所有订阅者发送，缓冲满时阻塞直到对方接收或取消订阅
// 返回：
//   - 成功接收的订阅者数量
func (b *Broadcaster[T]) Send(v T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for s := range b.subs {
		select {
		case s.c <- v:
			n++
		case <-s.done:
		}
	}
	return n
}

// TrySend 非阻塞发送，缓冲已满的订阅者被跳过
func (b *Broadcaster[T]) TrySend(v T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for s := range b.subs {
		select {
		case s.c <- v:
			n++
		default:
		}
	}
	return n
}

// Len 当前订阅者数量
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
