package push

import (
	"fmt"

	"github.com/lz1998/RICQ/pkg/utils/binary"
)

const (
	transMsgTypeMember     = 34
	transMsgTypePermission = 44
)

// PushTransInfo OnlinePush.PbPushTransMsg携带的成员变更
// 实现：*GroupLeave、*MemberPermissionChange、*GroupDisband
type PushTransInfo interface {
	Event
	isPushTransInfo()
}

func (*GroupLeave) isPushTransInfo()             {}
func (*MemberPermissionChange) isPushTransInfo() {}
func (*GroupDisband) isPushTransInfo()           {}

// OnlinePushTrans 解码后的push trans
type OnlinePushTrans struct {
	MsgSeq  int32
	MsgUID  int64
	MsgTime int32
	Info    PushTransInfo
}

// Key 去重键
func (t *OnlinePushTrans) Key() DedupKey {
	return DedupKey{Seq: t.MsgSeq, UID: t.MsgUID}
}

type transMsgInfo struct {
	fromUin int64
	msgType int32
	msgSeq  int32
	msgUID  int64
	msgTime int32
	msgData []byte
}

// DecodePushTrans 解码TransMsgInfo
// 未知的msg_type或子类型返回ErrUnknownTransType
func DecodePushTrans(payload []byte) (*OnlinePushTrans, error) {
	var info transMsgInfo
	var hasFrom bool
	if err := walkFields(payload, func(f pbField) error {
		switch f.num {
		case 1:
			info.fromUin, hasFrom = f.int64(), true
		case 3:
			info.msgType = f.int32()
		case 5:
			info.msgSeq = f.int32()
		case 6:
			info.msgUID = f.int64()
		case 7:
			info.msgTime = f.int32()
		case 10:
			info.msgData = f.data
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !hasFrom {
		return nil, fmt.Errorf("%w: trans msg without from_uin", ErrMalformed)
	}

	trans := &OnlinePushTrans{MsgSeq: info.msgSeq, MsgUID: info.msgUID, MsgTime: info.msgTime}
	var err error
	switch info.msgType {
	case transMsgTypeMember:
		trans.Info, err = decodeTransMember(info.fromUin, info.msgData)
	case transMsgTypePermission:
		trans.Info, err = decodeTransPermission(info.fromUin, info.msgData)
	default:
		err = fmt.Errorf("%w: msg_type=%d", ErrUnknownTransType, info.msgType)
	}
	if err != nil {
		return nil, err
	}
	return trans, nil
}

func decodeTransMember(groupCode int64, data []byte) (PushTransInfo, error) {
	r := binary.NewReader(data)
	r.Skip(4)
	r.Skip(1)
	target := int64(r.ReadUint32())
	typ := r.ReadUint8()
	operator := int64(r.ReadUint32())
	if err := r.Err(); err != nil {
		return nil, &malformedError{what: "trans member", err: err}
	}
	switch typ {
	case 0x02, 0x82:
		return &GroupLeave{GroupCode: groupCode, MemberUin: target}, nil
	case 0x03, 0x83:
		return &GroupLeave{GroupCode: groupCode, MemberUin: target, OperatorUin: &operator}, nil
	case 0x01, 0x81:
		return &GroupDisband{GroupCode: groupCode, OperatorUin: operator}, nil
	default:
		return nil, fmt.Errorf("%w: member typ=0x%x", ErrUnknownTransType, typ)
	}
}

func decodeTransPermission(groupCode int64, data []byte) (PushTransInfo, error) {
	r := binary.NewReader(data)
	r.Skip(5)
	var4 := r.ReadUint8()
	target := int64(r.ReadUint32())
	var var5 uint32
	if var4 != 0 && var4 != 1 {
		var5 = r.ReadUint32()
	}
	if err := r.Err(); err != nil {
		return nil, &malformedError{what: "trans permission", err: err}
	}
	if var5 != 0 || r.Len() != 1 {
		return nil, fmt.Errorf("%w: permission var4=%d var5=%d", ErrUnknownTransType, var4, var5)
	}
	perm := PermissionMember
	if r.ReadUint8() == 1 {
		perm = PermissionAdministrator
	}
	return &MemberPermissionChange{GroupCode: groupCode, MemberUin: target, NewPermission: perm}, nil
}
