package push

import (
	"strconv"
	"time"

	"github.com/lz1998/RICQ/pkg/utils/binary"
)

// ReqPush消息类型
const (
	MsgTypeGroupNotify  int16 = 732
	MsgTypeOnlinePush   int16 = 528
	groupMuteType             = 0x0c
	recalledMsgTypeSelf       = 2
)

// MsgType0x210Decoder 解码528消息的JCE外层，由协议引擎提供
type MsgType0x210Decoder func(vMsg []byte) (*MsgType0x210, error)

// DecodePushMessage 将一条ReqPush消息解码为事件
// 参数：
//   - info：消息
//   - selfUin：当前账号，用于过滤自己操作的禁言以及构造退群事件
//   - decode0x210：528消息的外层解码器
//
// 返回：
//   - 事件列表，未知类型返回空列表
//   - 错误（内容格式错误）
func DecodePushMessage(info *PushMessageInfo, selfUin int64, decode0x210 MsgType0x210Decoder) ([]Event, error) {
	switch info.MsgType {
	case MsgTypeGroupNotify:
		return decodeGroupNotify(info.VMsg, selfUin)
	case MsgTypeOnlinePush:
		if decode0x210 == nil {
			return nil, nil
		}
		msg, err := decode0x210(info.VMsg)
		if err != nil {
			return nil, err
		}
		return decodeMsgType0x210(msg, selfUin)
	default:
		return nil, nil
	}
}

func decodeGroupNotify(vMsg []byte, selfUin int64) ([]Event, error) {
	r := binary.NewReader(vMsg)
	groupCode := int64(r.ReadUint32())
	iType := r.ReadUint8()
	r.Skip(1)
	if err := r.Err(); err != nil {
		return nil, shortGroupNotify(err)
	}

	switch iType {
	case groupMuteType:
		operator := int64(r.ReadUint32())
		if operator == selfUin {
			return nil, nil
		}
		r.Skip(6)
		target := int64(r.ReadUint32())
		duration := time.Duration(r.ReadUint32()) * time.Second
		if err := r.Err(); err != nil {
			return nil, shortGroupNotify(err)
		}
		return []Event{&GroupMute{
			GroupCode:   groupCode,
			OperatorUin: operator,
			TargetUin:   target,
			Duration:    duration,
		}}, nil

	case 0x10, 0x11, 0x14, 0x15:
		r.Skip(1)
		body := r.ReadAvailable()
		if err := r.Err(); err != nil {
			return nil, shortGroupNotify(err)
		}
		return decodeNotifyMsgBody(body, groupCode)

	default:
		return nil, nil
	}
}

func shortGroupNotify(err error) error {
	return &malformedError{what: "group notify", err: err}
}

// decodeNotifyMsgBody NotifyMsgBody.opt_msg_recall(11)
func decodeNotifyMsgBody(body []byte, groupCode int64) ([]Event, error) {
	var events []Event
	err := walkFields(body, func(f pbField) error {
		if f.num != 11 {
			return nil
		}
		var operator int64
		var metas [][]byte
		if err := walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 1:
				operator = f.int64()
			case 3:
				metas = append(metas, f.data)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, m := range metas {
			recall := &GroupMessageRecall{GroupCode: groupCode, OperatorUin: operator}
			var msgType int32
			if err := walkFields(m, func(f pbField) error {
				switch f.num {
				case 1:
					recall.MsgSeq = f.int32()
				case 2:
					recall.Time = f.int32()
				case 4:
					msgType = f.int32()
				case 6:
					recall.AuthorUin = f.int64()
				}
				return nil
			}); err != nil {
				return err
			}
			if msgType == recalledMsgTypeSelf {
				continue
			}
			events = append(events, recall)
		}
		return nil
	})
	return events, err
}

func decodeMsgType0x210(msg *MsgType0x210, selfUin int64) ([]Event, error) {
	switch msg.SubMsgType {
	case 0x8a, 0x8b:
		return decodeSub8A(msg.VProtobuf)
	case 0xb3:
		return decodeSubB3(msg.VProtobuf)
	case 0xd4:
		var groupCode int64
		if err := walkFields(msg.VProtobuf, func(f pbField) error {
			if f.num == 1 {
				groupCode = f.int64()
			}
			return nil
		}); err != nil {
			return nil, err
		}
		return []Event{&GroupLeave{GroupCode: groupCode, MemberUin: selfUin}}, nil
	case 0x122, 0x123:
		return decodeGrayTip(msg.VProtobuf)
	case 0x27:
		return decodeSubMsg0x27(msg.VProtobuf)
	default:
		// 0x44 群/好友同步，以及其它未知类型
		return nil, nil
	}
}

// decodeSub8A Sub8A.msg_info(1)
func decodeSub8A(b []byte) ([]Event, error) {
	var events []Event
	err := walkFields(b, func(f pbField) error {
		if f.num != 1 {
			return nil
		}
		recall := &FriendMessageRecall{}
		if err := walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 1:
				recall.FriendUin = f.int64()
			case 3:
				recall.MsgSeq = f.int32()
			case 5:
				recall.Time = f.int64()
			}
			return nil
		}); err != nil {
			return err
		}
		events = append(events, recall)
		return nil
	})
	return events, err
}

// decodeSubB3 SubB3.msg_add_frd_notify(2)
func decodeSubB3(b []byte) ([]Event, error) {
	var friend *NewFriend
	err := walkFields(b, func(f pbField) error {
		if f.num != 2 {
			return nil
		}
		friend = &NewFriend{}
		return walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 1:
				friend.Uin = f.int64()
			case 5:
				friend.Nick = string(f.data)
			}
			return nil
		})
	})
	if err != nil || friend == nil {
		return nil, err
	}
	return []Event{friend}, nil
}

// decodeGrayTip GeneralGrayTipInfo.msg_templ_param(7)
func decodeGrayTip(b []byte) ([]Event, error) {
	var sender, receiver int64
	err := walkFields(b, func(f pbField) error {
		if f.num != 7 {
			return nil
		}
		var name, value string
		if err := walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 1:
				name = string(f.data)
			case 2:
				value = string(f.data)
			}
			return nil
		}); err != nil {
			return err
		}
		switch name {
		case "uin_str1":
			sender, _ = strconv.ParseInt(value, 10, 64)
		case "uin_str2":
			receiver, _ = strconv.ParseInt(value, 10, 64)
		}
		return nil
	})
	if err != nil || sender == 0 {
		return nil, err
	}
	return []Event{&FriendPoke{Sender: sender, Receiver: receiver}}, nil
}

// decodeSubMsg0x27 SubMsg0x27Body.mod_infos(1)，处理群名修改(12)与删除好友(14)
func decodeSubMsg0x27(b []byte) ([]Event, error) {
	var events []Event
	err := walkFields(b, func(f pbField) error {
		if f.num != 1 {
			return nil
		}
		return walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 12:
				ev, err := decodeModGroupProfile(f.data)
				if err != nil {
					return err
				}
				events = append(events, ev...)
			case 14:
				return walkFields(f.data, func(f pbField) error {
					if f.num != 1 {
						return nil
					}
					uins, err := f.varints()
					for _, uin := range uins {
						events = append(events, &DeleteFriend{Uin: int64(uin)})
					}
					return err
				})
			}
			return nil
		})
	})
	return events, err
}

func decodeModGroupProfile(b []byte) ([]Event, error) {
	var groupCode, operator int64
	var names []string
	err := walkFields(b, func(f pbField) error {
		switch f.num {
		case 2:
			var field uint64
			var value []byte
			if err := walkFields(f.data, func(f pbField) error {
				switch f.num {
				case 1:
					field = f.u64
				case 2:
					value = f.data
				}
				return nil
			}); err != nil {
				return err
			}
			if field == 1 {
				names = append(names, string(value))
			}
		case 3:
			groupCode = f.int64()
		case 4:
			operator = f.int64()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(names))
	for _, name := range names {
		events = append(events, &GroupNameUpdate{GroupCode: groupCode, OperatorUin: operator, GroupName: name})
	}
	return events, nil
}
