package push

import "sync"

// SystemMessageCache 最近一批群系统消息
// 只与最近一批比较，每批处理完后整体替换，不做合并
type SystemMessageCache struct {
	mu   sync.Mutex
	last GroupSystemMessages
}

// Admit 过滤出本批中需要通知的消息，并用本批替换缓存
// 参数：
//   - msgs：本次拉取到的完整批次
//   - startTime：连接建立时间（秒），早于该时间的消息视为已处理
//
// 返回：
//   - 未在上一批出现且不早于startTime的消息
//
// msgs为nil时返回空批次，缓存不变
func (c *SystemMessageCache) Admit(msgs *GroupSystemMessages, startTime int64) *GroupSystemMessages {
	fresh := &GroupSystemMessages{}
	if msgs == nil {
		return fresh
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range msgs.SelfInvited {
		if m.MsgTime < startTime || c.selfInvitedExists(m.MsgSeq) {
			continue
		}
		fresh.SelfInvited = append(fresh.SelfInvited, m)
	}
	for _, m := range msgs.JoinGroupRequests {
		if m.MsgTime < startTime || c.joinGroupRequestExists(m.MsgSeq) {
			continue
		}
		fresh.JoinGroupRequests = append(fresh.JoinGroupRequests, m)
	}
	c.last = *msgs
	return fresh
}

func (c *SystemMessageCache) selfInvitedExists(msgSeq int64) bool {
	for _, m := range c.last.SelfInvited {
		if m.MsgSeq == msgSeq {
			return true
		}
	}
	return false
}

func (c *SystemMessageCache) joinGroupRequestExists(msgSeq int64) bool {
	for _, m := range c.last.JoinGroupRequests {
		if m.MsgSeq == msgSeq {
			return true
		}
	}
	return false
}
