package push

import "time"

// Event 推送事件，由Handler按实际类型处理
type Event interface {
	// Kind 事件名，用于日志与指标
	Kind() string
}

// GroupMute 群禁言，Duration为0表示解除
type GroupMute struct {
	GroupCode   int64
	OperatorUin int64
	TargetUin   int64
	Duration    time.Duration
}

// GroupMessageRecall 群消息撤回
type GroupMessageRecall struct {
	MsgSeq      int32
	GroupCode   int64
	OperatorUin int64
	AuthorUin   int64
	Time        int32
}

// FriendMessageRecall 好友消息撤回
type FriendMessageRecall struct {
	MsgSeq    int32
	FriendUin int64
	Time      int64
}

// NewFriend 新好友
type NewFriend struct {
	Uin  int64
	Nick string
}

// GroupLeave 成员退群，OperatorUin非nil表示被踢出
type GroupLeave struct {
	GroupCode   int64
	MemberUin   int64
	OperatorUin *int64
}

// GroupDisband 群解散
type GroupDisband struct {
	GroupCode   int64
	OperatorUin int64
}

// GroupMemberPermission 群成员权限
type GroupMemberPermission uint8

const (
	PermissionMember GroupMemberPermission = iota
	PermissionAdministrator
	PermissionOwner
)

func (p GroupMemberPermission) String() string {
	switch p {
	case PermissionAdministrator:
		return "Administrator"
	case PermissionOwner:
		return "Owner"
	default:
		return "Member"
	}
}

// MemberPermissionChange 管理员变更
type MemberPermissionChange struct {
	GroupCode     int64
	MemberUin     int64
	NewPermission GroupMemberPermission
}

type FriendPoke struct {
	Sender   int64
	Receiver int64
}

type GroupNameUpdate struct {
	GroupCode   int64
	OperatorUin int64
	GroupName   string
}

type DeleteFriend struct {
	Uin int64
}

// SelfInvited 被邀请入群
type SelfInvited struct {
	MsgSeq      int64
	MsgTime     int64
	InvitorUin  int64
	InvitorNick string
	GroupCode   int64
	GroupName   string
	ActionUin   int64
	ActionNick  string
}

// JoinGroupRequest 加群申请
type JoinGroupRequest struct {
	MsgSeq      int64
	MsgTime     int64
	Message     string
	ReqUin      int64
	ReqNick     string
	GroupCode   int64
	GroupName   string
	ActionUin   int64
	Suspicious  bool
	InvitorUin  *int64
	InvitorNick *string
}

// GroupSystemMessages 一次拉取到的群系统消息
type GroupSystemMessages struct {
	SelfInvited       []*SelfInvited
	JoinGroupRequests []*JoinGroupRequest
}

// MSFOffline 服务器强制下线
type MSFOffline struct {
	Uin     int64
	SeqNo   int64
	Kick    int8
	Info    string
	Title   string
	SigKick int8
}

// GroupMessage 由一个或多个分片重组得到的群消息
type GroupMessage struct {
	Seqs      []int32
	Rands     []int32
	GroupCode int64
	GroupName string
	GroupCard string
	FromUin   int64
	Time      int32
	// Elements 为原始的消息元素编码，按分片顺序拼接
	Elements [][]byte
}

func (*GroupMute) Kind() string              { return "GroupMute" }
func (*GroupMessageRecall) Kind() string     { return "GroupMessageRecall" }
func (*FriendMessageRecall) Kind() string    { return "FriendMessageRecall" }
func (*NewFriend) Kind() string              { return "NewFriend" }
func (*GroupLeave) Kind() string             { return "GroupLeave" }
func (*GroupDisband) Kind() string           { return "GroupDisband" }
func (*MemberPermissionChange) Kind() string { return "MemberPermissionChange" }
func (*FriendPoke) Kind() string             { return "FriendPoke" }
func (*GroupNameUpdate) Kind() string        { return "GroupNameUpdate" }
func (*DeleteFriend) Kind() string           { return "DeleteFriend" }
func (*SelfInvited) Kind() string            { return "SelfInvited" }
func (*JoinGroupRequest) Kind() string       { return "JoinGroupRequest" }
func (*MSFOffline) Kind() string             { return "MSFOffline" }
func (*GroupMessage) Kind() string           { return "GroupMessage" }

// PushMessageInfo OnlinePush.ReqPush中的单条消息，外层JCE由引擎解码
type PushMessageInfo struct {
	FromUin int64
	MsgTime int64
	MsgType int16
	MsgSeq  int16
	MsgUID  int64
	VMsg    []byte
}

// MsgType0x210 528类消息的JCE外层
type MsgType0x210 struct {
	SubMsgType int64
	VProtobuf  []byte
}
