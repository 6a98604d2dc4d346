package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/lz1998/RICQ/pkg/push"
	"github.com/lz1998/RICQ/pkg/utils/binary"
	"github.com/lz1998/RICQ/pkg/utils/crypto"
	"github.com/lz1998/RICQ/pkg/utils/tcp_connection"
	"github.com/lz1998/RICQ/pkg/wtlogin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selfUin = 10000

var errUnsupported = errors.New("unsupported")

func encodePacket(seq int32, cmd string, body []byte) []byte {
	w := binary.NewWriter()
	w.WriteUint32(uint32(seq))
	w.WriteStringShort(cmd)
	w.Write(body)
	return w.Bytes()
}

type fakeEngine struct {
	pushReq       *PushReq
	decodePushReq func([]byte) (*PushReq, error)
	offline       *push.MSFOffline
	loginStatus   uint8
	loginTLV      wtlogin.TLVMap
	loginKey      []byte
}

func (e *fakeEngine) Uin() int64 { return selfUin }

func (e *fakeEngine) DecodePacket(frame []byte) (*Packet, error) {
	r := binary.NewReader(frame)
	pkt := &Packet{Seq: r.ReadInt32(), CommandName: r.ReadStringShort()}
	pkt.Body = r.ReadAvailable()
	if err := r.Err(); err != nil {
		return nil, err
	}
	return pkt, nil
}

func (e *fakeEngine) DecodePushReq(body []byte) (*PushReq, error) {
	if e.decodePushReq != nil {
		return e.decodePushReq(body)
	}
	if e.pushReq == nil {
		return nil, errUnsupported
	}
	return e.pushReq, nil
}

func (e *fakeEngine) DecodeMsgType0x210([]byte) (*push.MsgType0x210, error) {
	return nil, errUnsupported
}

func (e *fakeEngine) BuildDeleteOnlinePushPacket(_ int64, _ int32, _ []byte, seq int32, _ []*push.PushMessageInfo) []byte {
	return encodePacket(seq, "OnlinePush.RespPush", nil)
}

func (e *fakeEngine) BuildSidTicketExpiredResponse(seq int32) []byte {
	return encodePacket(seq, CmdOnlinePushSidExpired, nil)
}

func (e *fakeEngine) DecodeMSFForceOffline([]byte) (*push.MSFOffline, error) {
	if e.offline == nil {
		return nil, errUnsupported
	}
	return e.offline, nil
}

func (e *fakeEngine) BuildMsfOfflineResponse(_, seqNo int64) []byte {
	return encodePacket(int32(seqNo), "StatSvc.RspMSFForceOffline", nil)
}

func (e *fakeEngine) DecodeGroupSystemMessages([]byte) (*push.GroupSystemMessages, error) {
	return nil, errUnsupported
}

func (e *fakeEngine) DecodeLoginResponse(*Packet) (uint8, wtlogin.TLVMap, []byte, error) {
	return e.loginStatus, e.loginTLV, e.loginKey, nil
}

func (e *fakeEngine) DecodeTransEmpResponse(pkt *Packet) (uint16, []byte, error) {
	return wtlogin.TransEmpQueryResult, pkt.Body, nil
}

type recorder struct {
	mu     sync.Mutex
	events []push.Event
}

func (r *recorder) Handle(e push.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []push.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]push.Event(nil), r.events...)
}

// peer 模拟服务器端
type peer struct {
	conn   net.Conn
	fw     *tcp_connection.FrameWriter
	frames chan []byte
	done   chan struct{}
}

func startClient(t *testing.T, c *Client) *peer {
	t.Helper()
	a, b := net.Pipe()
	p := &peer{
		conn:   b,
		fw:     tcp_connection.NewFrameWriter(b),
		frames: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	go func() {
		c.Start(a)
		close(p.done)
	}()
	go func() {
		fr := tcp_connection.NewFrameReader(b)
		for {
			f, err := fr.ReadFrame()
			if err != nil {
				close(p.frames)
				return
			}
			p.frames <- f
		}
	}()
	t.Cleanup(func() { _ = b.Close() })
	require.Eventually(t, func() bool { return c.GetStatus() == NetworkStatusRunning }, time.Second, time.Millisecond)
	return p
}

func (p *peer) waitExit(t *testing.T) {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("network loop did not exit")
	}
}

var errNoFrame = errors.New("no frame from client")

func (p *peer) nextPacket(e Engine) (*Packet, error) {
	select {
	case f, ok := <-p.frames:
		if !ok {
			return nil, errNoFrame
		}
		return e.DecodePacket(f)
	case <-time.After(2 * time.Second):
		return nil, errNoFrame
	}
}

// reply 读取一个请求并以相同seq回复
func (p *peer) reply(e Engine, cmd string, body []byte) {
	req, err := p.nextPacket(e)
	if err != nil {
		return
	}
	_ = p.fw.WriteFrame(encodePacket(req.Seq, cmd, body))
}

func TestStart_EOF(t *testing.T) {
	c := NewClient(&fakeEngine{}, &recorder{}, nil)
	p := startClient(t, c)

	require.NoError(t, p.conn.Close())
	p.waitExit(t)
	assert.Equal(t, NetworkStatusNetworkOffline, c.GetStatus())
}

func TestStop_MsfOffline(t *testing.T) {
	c := NewClient(&fakeEngine{}, &recorder{}, nil)
	c.online.Store(true)
	p := startClient(t, c)

	c.Stop(NetworkStatusMsfOffline)
	p.waitExit(t)
	assert.Equal(t, NetworkStatusMsfOffline, c.GetStatus())
	assert.False(t, c.Online())

	c.Stop(NetworkStatusStop)
	assert.Equal(t, NetworkStatusStop, c.GetStatus())
}

func TestStop_RightAfterStart(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := NewClient(&fakeEngine{}, &recorder{}, nil)
		p := startClient(t, c)
		c.Stop(NetworkStatusMsfOffline)
		p.waitExit(t)
		require.Equal(t, NetworkStatusMsfOffline, c.GetStatus(), "iteration %d", i)
	}
}

func TestStop_SignalAfterStatus(t *testing.T) {
	c := NewClient(&fakeEngine{}, &recorder{}, nil)
	sub := c.Disconnected()
	defer sub.Close()

	statusAtSignal := make(chan NetworkStatus, 1)
	go func() {
		<-sub.C
		statusAtSignal <- c.GetStatus()
	}()
	c.Stop(NetworkStatusKickedOffline)
	select {
	case s := <-statusAtSignal:
		assert.Equal(t, NetworkStatusKickedOffline, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect signal")
	}
}

func TestStart_DecodeFailure(t *testing.T) {
	c := NewClient(&fakeEngine{}, &recorder{}, nil)
	p := startClient(t, c)

	require.NoError(t, p.fw.WriteFrame([]byte{1, 2}))
	p.waitExit(t)
	assert.Equal(t, NetworkStatusNetworkOffline, c.GetStatus())
}

func TestSend(t *testing.T) {
	e := &fakeEngine{}
	c := NewClient(e, &recorder{}, nil)
	assert.ErrorIs(t, c.Send([]byte("x")), ErrNotConnected)

	p := startClient(t, c)
	require.NoError(t, c.Send(encodePacket(1, "Heartbeat.Alive", nil)))
	pkt, err := p.nextPacket(e)
	require.NoError(t, err)
	assert.Equal(t, "Heartbeat.Alive", pkt.CommandName)

	c.Stop(NetworkStatusStop)
	p.waitExit(t)
	assert.ErrorIs(t, c.Send([]byte("x")), ErrNotConnected)
}

func TestDisconnectSignal(t *testing.T) {
	c := NewClient(&fakeEngine{}, &recorder{}, nil)
	p := startClient(t, c)
	sub := c.Disconnected()
	defer sub.Close()

	require.NoError(t, p.conn.Close())
	select {
	case <-sub.C:
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect signal")
	}
}

func TestSendAndWait(t *testing.T) {
	e := &fakeEngine{}
	c := NewClient(e, &recorder{}, nil)
	p := startClient(t, c)

	go p.reply(e, "Resp", []byte("ok"))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.SendAndWait(ctx, 7, encodePacket(7, "Req", nil))
	require.NoError(t, err)
	assert.Equal(t, int32(7), resp.Seq)
	assert.Equal(t, []byte("ok"), resp.Body)
}

func TestSendAndWait_Disconnected(t *testing.T) {
	e := &fakeEngine{}
	c := NewClient(e, &recorder{}, nil)
	p := startClient(t, c)

	go func() {
		_, _ = p.nextPacket(e)
		_ = p.conn.Close()
	}()
	_, err := c.SendAndWait(context.Background(), 8, encodePacket(8, "Req", nil))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubmitLogin(t *testing.T) {
	key := []byte("0123456789abcdef")
	tea, err := crypto.NewQQTea(key)
	require.NoError(t, err)
	inner := binary.NewWriter()
	inner.WriteUint16(1)
	inner.WriteTLV(0x10a, []byte("tgt"))
	t119, err := tea.Encrypt(inner.Bytes())
	require.NoError(t, err)

	e := &fakeEngine{
		loginStatus: wtlogin.StatusSuccess,
		loginTLV:    wtlogin.TLVMap{0x119: t119},
		loginKey:    key,
	}
	c := NewClient(e, &recorder{}, nil)
	p := startClient(t, c)
	go p.reply(e, "wtlogin.login", nil)

	resp, err := c.SubmitLogin(context.Background(), 3, encodePacket(3, "wtlogin.login", nil))
	require.NoError(t, err)
	success, ok := resp.(*wtlogin.LoginSuccess)
	require.True(t, ok)
	assert.Equal(t, []byte("tgt"), success.Tgt)
	assert.True(t, c.Online())
}

func TestQueryQRCode(t *testing.T) {
	e := &fakeEngine{}
	c := NewClient(e, &recorder{}, nil)
	p := startClient(t, c)
	// varLen=0，跳过4字节后为结果码
	go p.reply(e, "wtlogin.trans_emp", []byte{0, 0, 0, 0, 0, 0, 0x30})

	state, err := c.QueryQRCode(context.Background(), 4, encodePacket(4, "wtlogin.trans_emp", nil))
	require.NoError(t, err)
	assert.Equal(t, wtlogin.QRCodeWaitingForScan{}, state)
	assert.False(t, wtlogin.IsTerminal(state))
}
