package push

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// 同时缓存的未完成分片消息数
const pendingGroupMessages = 128

// GroupMessagePart 群消息分片
type GroupMessagePart struct {
	Seq       int32
	Rand      int32
	GroupCode int64
	FromUin   int64
	Time      int32
	PkgNum    int32
	PkgIndex  int32
	DivSeq    int32
	GroupName string
	GroupCard string
	Elems     [][]byte
}

// ParseGroupMessage 按分片序号重组群消息
// 元素按分片顺序拼接且全部保留，元信息取自序号最小的分片
// 调用方负责保证分片已收齐
func ParseGroupMessage(parts []*GroupMessagePart) *GroupMessage {
	sorted := make([]*GroupMessagePart, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PkgIndex < sorted[j].PkgIndex })

	msg := &GroupMessage{
		Seqs:  make([]int32, 0, len(sorted)),
		Rands: make([]int32, 0, len(sorted)),
	}
	for i, p := range sorted {
		if i == 0 {
			msg.GroupCode = p.GroupCode
			msg.GroupName = p.GroupName
			msg.GroupCard = p.GroupCard
			msg.FromUin = p.FromUin
			msg.Time = p.Time
		}
		msg.Seqs = append(msg.Seqs, p.Seq)
		msg.Rands = append(msg.Rands, p.Rand)
		msg.Elements = append(msg.Elements, p.Elems...)
	}
	return msg
}

// GroupMessageBuilder 按div_seq收集分片，收齐后重组
type GroupMessageBuilder struct {
	mu      sync.Mutex
	pending *lru.Cache // div_seq -> []*GroupMessagePart
}

func NewGroupMessageBuilder() *GroupMessageBuilder {
	c, _ := lru.New(pendingGroupMessages)
	return &GroupMessageBuilder{pending: c}
}

// Add 加入一个分片
// 返回：
//   - 收齐时返回重组后的消息与true，否则返回nil与false
func (b *GroupMessageBuilder) Add(part *GroupMessagePart) (*GroupMessage, bool) {
	if part.PkgNum <= 1 {
		return ParseGroupMessage([]*GroupMessagePart{part}), true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var parts []*GroupMessagePart
	if v, ok := b.pending.Get(part.DivSeq); ok {
		parts = v.([]*GroupMessagePart)
	}
	for _, p := range parts {
		if p.PkgIndex == part.PkgIndex {
			// 重复分片
			return nil, false
		}
	}
	parts = append(parts, part)
	if int32(len(parts)) < part.PkgNum {
		b.pending.Add(part.DivSeq, parts)
		return nil, false
	}
	b.pending.Remove(part.DivSeq)
	return ParseGroupMessage(parts), true
}

// DecodeGroupMessagePart 解码OnlinePush.PbPushGroupMsg的PushMessagePacket
func DecodeGroupMessagePart(payload []byte) (*GroupMessagePart, error) {
	part := &GroupMessagePart{}
	err := walkFields(payload, func(f pbField) error {
		if f.num != 1 {
			return nil
		}
		return walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 1:
				return decodeMsgHead(f.data, part)
			case 2:
				return decodeContentHead(f.data, part)
			case 3:
				return decodeMsgBody(f.data, part)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

func decodeMsgHead(b []byte, part *GroupMessagePart) error {
	return walkFields(b, func(f pbField) error {
		switch f.num {
		case 1:
			part.FromUin = f.int64()
		case 5:
			part.Seq = f.int32()
		case 6:
			part.Time = f.int32()
		case 9:
			return walkFields(f.data, func(f pbField) error {
				switch f.num {
				case 1:
					part.GroupCode = f.int64()
				case 4:
					part.GroupCard = string(f.data)
				case 8:
					part.GroupName = string(f.data)
				}
				return nil
			})
		}
		return nil
	})
}

func decodeContentHead(b []byte, part *GroupMessagePart) error {
	return walkFields(b, func(f pbField) error {
		switch f.num {
		case 1:
			part.PkgNum = f.int32()
		case 2:
			part.PkgIndex = f.int32()
		case 3:
			part.DivSeq = f.int32()
		}
		return nil
	})
}

// decodeMsgBody MessageBody.rich_text(1)：attr(1).random(3)、elems(2)
func decodeMsgBody(b []byte, part *GroupMessagePart) error {
	return walkFields(b, func(f pbField) error {
		if f.num != 1 {
			return nil
		}
		return walkFields(f.data, func(f pbField) error {
			switch f.num {
			case 1:
				return walkFields(f.data, func(f pbField) error {
					if f.num == 3 {
						part.Rand = f.int32()
					}
					return nil
				})
			case 2:
				part.Elems = append(part.Elems, f.data)
			}
			return nil
		})
	})
}
