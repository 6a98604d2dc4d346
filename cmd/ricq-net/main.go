package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lz1998/RICQ/pkg/client"
	"github.com/lz1998/RICQ/pkg/metrics"
	"github.com/lz1998/RICQ/pkg/push"
	"github.com/lz1998/RICQ/pkg/utils/config"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
	"github.com/lz1998/RICQ/pkg/utils/tcp_connection"
	"github.com/lz1998/RICQ/pkg/wtlogin"
)

var errRawEngine = errors.New("raw engine does not decode payloads")

// rawEngine 不解析包内容，只把每一帧作为一个包交给客户端
type rawEngine struct {
	uin int64
}

func (e *rawEngine) Uin() int64 { return e.uin }

func (e *rawEngine) DecodePacket(frame []byte) (*client.Packet, error) {
	log.Debugf("[CLI] 收到帧: len=%d", len(frame))
	return &client.Packet{Seq: -1, Body: frame}, nil
}

func (e *rawEngine) DecodePushReq([]byte) (*client.PushReq, error) { return nil, errRawEngine }

func (e *rawEngine) DecodeMsgType0x210([]byte) (*push.MsgType0x210, error) {
	return nil, errRawEngine
}

func (e *rawEngine) BuildDeleteOnlinePushPacket(int64, int32, []byte, int32, []*push.PushMessageInfo) []byte {
	return nil
}

func (e *rawEngine) BuildSidTicketExpiredResponse(int32) []byte { return nil }

func (e *rawEngine) DecodeMSFForceOffline([]byte) (*push.MSFOffline, error) {
	return nil, errRawEngine
}

func (e *rawEngine) BuildMsfOfflineResponse(int64, int64) []byte { return nil }

func (e *rawEngine) DecodeGroupSystemMessages([]byte) (*push.GroupSystemMessages, error) {
	return nil, errRawEngine
}

func (e *rawEngine) DecodeLoginResponse(*client.Packet) (uint8, wtlogin.TLVMap, []byte, error) {
	return 0, nil, nil, errRawEngine
}

func (e *rawEngine) DecodeTransEmpResponse(*client.Packet) (uint16, []byte, error) {
	return 0, nil, errRawEngine
}

func main() {
	conf := config.Parse()
	defer log.Sync()

	if conf.Metrics.Listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			log.Infof("[CLI] 指标服务监听于%s", conf.Metrics.Listen)
			if err := http.ListenAndServe(conf.Metrics.Listen, mux); err != nil {
				log.Errorf("[CLI] 指标服务退出: %v", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := tcp_connection.Dial(ctx, &tcp_connection.ClientOption{
		Address:         conf.Server.Address,
		Proxy:           conf.Server.Proxy,
		Timeout:         conf.Server.DialTimeout,
		KeepAlive:       true,
		KeepAlivePeriod: conf.Server.KeepAlive,
	})
	if err != nil {
		log.Errorf("[CLI] 连接失败: %v", err)
		os.Exit(1)
	}

	handler := client.HandlerFunc(func(e push.Event) {
		log.Infof("[CLI] 收到事件%s: %+v", e.Kind(), e)
	})
	cli := client.NewClient(&rawEngine{uin: conf.Client.Uin}, handler, &client.Options{
		PushCacheSize:  conf.Client.PushCacheSize,
		OutboundBuffer: conf.Client.OutboundBuffer,
	})

	go func() {
		<-ctx.Done()
		log.Info("[CLI] 收到中断信号，正在关闭...")
		cli.Stop(client.NetworkStatusStop)
	}()

	cli.Start(conn)
	log.Infof("[CLI] 连接已断开: status=%s", cli.GetStatus())
}
