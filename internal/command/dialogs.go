package command

import (
	"errors"

	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
	"github.com/suxuehui/jt808-deprecated/internal/tcpserver"
)

var errBadArgument = errors.New("command: bad argument")

// getParams 查询终端参数。ids 为空时查询全部(0x8104)，否则查询
// 指定ID(0x8106)。分包应答逐包确认并累积，直到收齐。
func (o *Orchestrator) getParams(sess *tcpserver.Session, term *registry.Terminal, ids []uint32) ([]jt808.Param, error) {
	var got []jt808.Param
	err := sess.Do(func(d *tcpserver.Dialog) error {
		env := &jt808.Envelope{PhoneBCD: term.PhoneBCD}
		msgID := jt808.DownGetTermParam
		if len(ids) > 0 {
			msgID = jt808.DownGetSpecTermParam
			env.ParamIDs = ids
		}
		if err := d.Send(msgID, env); err != nil {
			return err
		}
		for {
			h, body, err := d.Recv()
			if err != nil {
				return err
			}
			renv := &jt808.Envelope{PhoneBCD: term.PhoneBCD}
			if err := jt808.DecodeBody(h, renv, body); err != nil {
				continue
			}
			if h.MessageID != jt808.UpGetParamResponse {
				continue
			}
			got = append(got, renv.Params...)
			// 每个分包都要确认
			ack := &jt808.Envelope{
				PhoneBCD:       term.PhoneBCD,
				RespondFlowNum: renv.RespondFlowNum,
				RespondID:      jt808.UpGetParamResponse,
				RespondResult:  jt808.ResultSuccess,
			}
			if err := d.Send(jt808.DownUniResponse, ack); err != nil {
				return err
			}
			if renv.PacketIndex == renv.TotalPackets {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return got, nil
}

// setParams 下发终端参数。超过单帧上限时贪心切分，逐帧发送并
// 等待通用应答后再发下一帧。
func (o *Orchestrator) setParams(sess *tcpserver.Session, term *registry.Terminal, params []jt808.Param) error {
	groups := jt808.SplitParams(params, jt808.MaxBodyLen)
	total := len(groups)
	return sess.Do(func(d *tcpserver.Dialog) error {
		for i, g := range groups {
			env := &jt808.Envelope{PhoneBCD: term.PhoneBCD, Params: g}
			if total > 1 {
				env.TotalPackets = uint16(total)
				env.PacketIndex = uint16(i + 1)
			}
			if err := d.Send(jt808.DownSetTermParam, env); err != nil {
				return err
			}
			if err := awaitUniResponse(d, jt808.DownSetTermParam); err != nil {
				return err
			}
		}
		return nil
	})
}

// sendAreaCommand 下发区域设置/删除类消息并等待对应的通用应答
func (o *Orchestrator) sendAreaCommand(sess *tcpserver.Session, term *registry.Terminal, msgID uint16, env *jt808.Envelope) error {
	env.PhoneBCD = term.PhoneBCD
	return sess.Do(func(d *tcpserver.Dialog) error {
		if err := d.Send(msgID, env); err != nil {
			return err
		}
		return awaitUniResponse(d, msgID)
	})
}

// awaitUniResponse 循环接收，直到看到应答ID匹配的上行通用应答。
// 其间收到的其他上行忽略。
func awaitUniResponse(d *tcpserver.Dialog, respondTo uint16) error {
	for {
		h, body, err := d.Recv()
		if err != nil {
			return err
		}
		renv := &jt808.Envelope{}
		if err := jt808.DecodeBody(h, renv, body); err != nil {
			continue
		}
		if h.MessageID == jt808.UpUniResponse && renv.RespondID == respondTo {
			return nil
		}
	}
}
