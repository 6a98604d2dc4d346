package client

import (
	"errors"

	"github.com/lz1998/RICQ/pkg/push"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
)

// routeIncomePacket 由网络循环调用：等待中的请求直接收到响应，其余包按到达顺序入队
func (c *Client) routeIncomePacket(pkt *Packet, q *packetQueue) {
	if ch := c.removePromise(pkt.Seq); ch != nil {
		ch <- pkt
		return
	}
	q.push(pkt)
}

// processIncomePacket 按命令分发推送
func (c *Client) processIncomePacket(pkt *Packet) {
	var err error
	switch pkt.CommandName {
	case CmdOnlinePushReqPush:
		err = c.processPushReqPacket(pkt)
	case CmdOnlinePushTrans:
		err = c.processPushTransPacket(pkt)
	case CmdOnlinePushGroupMsg:
		err = c.processGroupMessagePacket(pkt)
	case CmdMSFForceOffline, CmdPushForceOffline:
		err = c.processMsfForceOfflinePacket(pkt)
	case CmdOnlinePushSidExpired:
		err = c.Send(c.engine.BuildSidTicketExpiredResponse(pkt.Seq))
	case CmdGroupSystemMessages:
		var msgs *push.GroupSystemMessages
		if msgs, err = c.engine.DecodeGroupSystemMessages(pkt.Body); err == nil {
			c.ProcessGroupSystemMessages(msgs)
		}
	default:
		log.Debugf("[CLIENT] 未处理的包: cmd=%s, seq=%d", pkt.CommandName, pkt.Seq)
	}
	if err != nil {
		log.Warnf("[CLIENT] 处理包失败: cmd=%s, seq=%d, err=%v", pkt.CommandName, pkt.Seq, err)
	}
}

func (c *Client) processPushReqPacket(pkt *Packet) error {
	req, err := c.engine.DecodePushReq(pkt.Body)
	if err != nil {
		return err
	}
	ack := c.engine.BuildDeleteOnlinePushPacket(req.Uin, req.Svrip, req.PushToken, pkt.Seq, req.MsgInfos)
	if err := c.Send(ack); err != nil {
		log.Warnf("[PUSH] 发送删除推送包失败: %v", err)
	}
	c.processPushReq(req.MsgInfos)
	return nil
}

// processPushReq 去重后逐条解码并投递
func (c *Client) processPushReq(infos []*push.PushMessageInfo) {
	uin := c.Uin()
	for _, info := range infos {
		if c.pushReqExists(info) {
			continue
		}
		events, err := push.DecodePushMessage(info, uin, c.engine.DecodeMsgType0x210)
		if err != nil {
			log.Warnf("[PUSH] 推送消息解码失败: type=%d, seq=%d, err=%v", info.MsgType, info.MsgSeq, err)
			continue
		}
		for _, e := range events {
			c.emit(e)
		}
	}
}

// pushReqExists msg_time为0时不做时间过滤
func (c *Client) pushReqExists(info *push.PushMessageInfo) bool {
	if info.MsgTime != 0 && info.MsgTime < c.StartTime() {
		return true
	}
	return c.pushReqCache.Exists(push.DedupKey{Seq: int32(info.MsgSeq), UID: info.MsgUID})
}

func (c *Client) processPushTransPacket(pkt *Packet) error {
	trans, err := push.DecodePushTrans(pkt.Body)
	if errors.Is(err, push.ErrUnknownTransType) {
		log.Debugf("[PUSH] 忽略push trans: %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	c.processPushTrans(trans)
	return nil
}

func (c *Client) processPushTrans(trans *push.OnlinePushTrans) {
	if int64(trans.MsgTime) < c.StartTime() {
		return
	}
	if c.pushTransCache.Exists(trans.Key()) {
		return
	}
	c.emit(trans.Info)
}

func (c *Client) processGroupMessagePacket(pkt *Packet) error {
	part, err := push.DecodeGroupMessagePart(pkt.Body)
	if err != nil {
		return err
	}
	if msg, ok := c.groupMsgParts.Add(part); ok {
		c.emit(msg)
	}
	return nil
}

// ProcessGroupSystemMessages 投递一批群系统消息中的新消息
func (c *Client) ProcessGroupSystemMessages(msgs *push.GroupSystemMessages) {
	fresh := c.groupSysCache.Admit(msgs, c.StartTime())
	for _, m := range fresh.SelfInvited {
		c.emit(m)
	}
	for _, m := range fresh.JoinGroupRequests {
		c.emit(m)
	}
}

// processMsfForceOfflinePacket 回复下线响应后停止连接
func (c *Client) processMsfForceOfflinePacket(pkt *Packet) error {
	offline, err := c.engine.DecodeMSFForceOffline(pkt.Body)
	if err != nil {
		return err
	}
	if err := c.Send(c.engine.BuildMsfOfflineResponse(offline.Uin, offline.SeqNo)); err != nil {
		log.Warnf("[CLIENT] 发送下线响应失败: %v", err)
	}
	c.Stop(NetworkStatusMsfOffline)
	c.emit(offline)
	return nil
}
