package client

import (
	"errors"

	"github.com/lz1998/RICQ/pkg/push"
	"github.com/lz1998/RICQ/pkg/wtlogin"
)

// NetworkStatus 连接状态
type NetworkStatus uint8

const (
	NetworkStatusUnknown NetworkStatus = iota
	NetworkStatusRunning
	NetworkStatusStop
	NetworkStatusDrop
	NetworkStatusNetworkOffline
	NetworkStatusKickedOffline
	NetworkStatusMsfOffline
)

func (s NetworkStatus) String() string {
	switch s {
	case NetworkStatusRunning:
		return "Running"
	case NetworkStatusStop:
		return "Stop"
	case NetworkStatusDrop:
		return "Drop"
	case NetworkStatusNetworkOffline:
		return "NetworkOffline"
	case NetworkStatusKickedOffline:
		return "KickedOffline"
	case NetworkStatusMsfOffline:
		return "MsfOffline"
	default:
		return "Unknown"
	}
}

// 服务器下发的命令
const (
	CmdOnlinePushReqPush    = "OnlinePush.ReqPush"
	CmdOnlinePushTrans      = "OnlinePush.PbPushTransMsg"
	CmdOnlinePushGroupMsg   = "OnlinePush.PbPushGroupMsg"
	CmdOnlinePushSidExpired = "OnlinePush.SidTicketExpired"
	CmdMSFForceOffline      = "StatSvc.ReqMSFOffline"
	CmdPushForceOffline     = "MessageSvc.PushForceOffline"
	CmdGroupSystemMessages  = "ProfileService.Pb.ReqSystemMsgNew.Group"
)

var (
	ErrNotConnected = errors.New("client not connected")
	ErrClosed       = errors.New("connection closed while waiting for response")
)

// Packet 引擎解出的上行/下行包
type Packet struct {
	Seq         int32
	CommandName string
	Body        []byte
}

// PushReq OnlinePush.ReqPush解出的内容
type PushReq struct {
	Uin       int64
	Svrip     int32
	PushToken []byte
	MsgInfos  []*push.PushMessageInfo
}

// Engine 协议引擎，负责包的加解密与JCE编解码
type Engine interface {
	Uin() int64
	DecodePacket(frame []byte) (*Packet, error)

	DecodePushReq(body []byte) (*PushReq, error)
	DecodeMsgType0x210(vMsg []byte) (*push.MsgType0x210, error)
	BuildDeleteOnlinePushPacket(uin int64, svrip int32, pushToken []byte, seq int32, infos []*push.PushMessageInfo) []byte
	BuildSidTicketExpiredResponse(seq int32) []byte

	DecodeMSFForceOffline(body []byte) (*push.MSFOffline, error)
	BuildMsfOfflineResponse(uin, seqNo int64) []byte

	DecodeGroupSystemMessages(body []byte) (*push.GroupSystemMessages, error)

	// DecodeLoginResponse 解开wtlogin外层，返回状态码、TLV与0x119的解密密钥
	DecodeLoginResponse(pkt *Packet) (status uint8, tlv wtlogin.TLVMap, encryptKey []byte, err error)
	// DecodeTransEmpResponse 解开trans_emp外层
	DecodeTransEmpResponse(pkt *Packet) (subCommand uint16, body []byte, err error)
}

// Handler 事件处理，每个事件只投递一次
type Handler interface {
	Handle(e push.Event)
}

// HandlerFunc 函数适配Handler
type HandlerFunc func(e push.Event)

func (f HandlerFunc) Handle(e push.Event) { f(e) }

// Options 客户端选项，零值使用默认值
type Options struct {
	PushCacheSize  int
	OutboundBuffer int
}
