package jt808

import (
	"encoding/binary"
	"fmt"
)

func putU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func putU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func putAreaCommonTail(buf []byte, a *AreaCommon) []byte {
	if a.Attr.ByTime() {
		buf = append(buf, a.StartTime[:]...)
		buf = append(buf, a.EndTime[:]...)
	}
	if a.Attr.SpeedLimit() {
		buf = putU16(buf, a.MaxSpeed)
		buf = append(buf, a.Overspeed)
	}
	return buf
}

// EncodeBody 按消息ID从信封生成下行消息体。分包计数不在此处理：
// 0x8103/0x8108 的调用方先拆分参数/文件块，再逐帧打包。
func EncodeBody(msgID uint16, env *Envelope) ([]byte, error) {
	var buf []byte
	switch msgID {
	case DownUniResponse:
		buf = putU16(buf, env.RespondFlowNum)
		buf = putU16(buf, env.RespondID)
		buf = append(buf, env.RespondResult)

	case DownRegisterResponse:
		buf = putU16(buf, env.RespondFlowNum)
		buf = append(buf, env.RespondResult)
		if env.RespondResult == ResultRegisterSuccess {
			buf = append(buf, env.AuthCode[:]...)
		}

	case DownSetTermParam:
		params := env.Params[:0:0]
		for _, p := range env.Params {
			// 未知类型的参数不上线，静默跳过
			if p.Type == TypeUnknown {
				continue
			}
			params = append(params, p)
		}
		buf = append(buf, byte(len(params)))
		for _, p := range params {
			buf = putU32(buf, p.ID)
			buf = append(buf, p.Len)
			buf = append(buf, p.Value...)
		}

	case DownGetTermParam:
		// 空消息体

	case DownGetSpecTermParam:
		buf = append(buf, byte(len(env.ParamIDs)))
		for _, id := range env.ParamIDs {
			buf = putU32(buf, id)
		}

	case DownUpgradePackage:
		buf = append(buf, env.UpgradeType)
		buf = append(buf, env.ManufacturerID[:]...)
		buf = append(buf, byte(len(env.Version)))
		buf = append(buf, env.Version...)
		buf = putU32(buf, uint32(len(env.PacketData)))
		buf = append(buf, env.PacketData...)

	case DownSetCircularArea:
		buf = append(buf, env.SetAreaType, byte(len(env.Circulars)))
		for i := range env.Circulars {
			a := &env.Circulars[i]
			buf = putU32(buf, a.ID)
			buf = putU16(buf, uint16(a.Attr))
			buf = putU32(buf, a.Center.Latitude)
			buf = putU32(buf, a.Center.Longitude)
			buf = putU32(buf, a.Radius)
			buf = putAreaCommonTail(buf, &a.AreaCommon)
		}

	case DownSetRectangleArea:
		buf = append(buf, env.SetAreaType, byte(len(env.Rectangles)))
		for i := range env.Rectangles {
			a := &env.Rectangles[i]
			buf = putU32(buf, a.ID)
			buf = putU16(buf, uint16(a.Attr))
			buf = putU32(buf, a.UpperLeft.Latitude)
			buf = putU32(buf, a.UpperLeft.Longitude)
			buf = putU32(buf, a.BottomRight.Latitude)
			buf = putU32(buf, a.BottomRight.Longitude)
			buf = putAreaCommonTail(buf, &a.AreaCommon)
		}

	case DownSetPolygonArea:
		buf = append(buf, env.SetAreaType, byte(len(env.Polygons)))
		for i := range env.Polygons {
			a := &env.Polygons[i]
			buf = putU32(buf, a.ID)
			buf = putU16(buf, uint16(a.Attr))
			// 多边形的顶点数与顶点表在可选字段之后
			buf = putAreaCommonTail(buf, &a.AreaCommon)
			buf = putU16(buf, uint16(len(a.Vertices)))
			for _, c := range a.Vertices {
				buf = putU32(buf, c.Latitude)
				buf = putU32(buf, c.Longitude)
			}
		}

	case DownDelCircularArea, DownDelRectangleArea, DownDelPolygonArea:
		buf = append(buf, byte(len(env.AreaIDs)))
		for _, id := range env.AreaIDs {
			buf = putU32(buf, id)
		}

	case DownPassThrough:
		if env.PassThrough == nil {
			return nil, fmt.Errorf("jt808: passthrough payload missing")
		}
		buf = append(buf, env.PassThrough.Type)
		buf = append(buf, env.PassThrough.Data...)

	default:
		return nil, fmt.Errorf("jt808: unsupported downlink message 0x%04X", msgID)
	}
	return buf, nil
}

// Pack 生成一条完整下行帧。流水号由调用方分配；分包计数来自信封，
// TotalPackets > 1 时置分包位并携带分包项。
func Pack(msgID uint16, flowNum uint16, env *Envelope) ([]byte, error) {
	body, err := EncodeBody(msgID, env)
	if err != nil {
		return nil, err
	}
	h := &Header{
		MessageID: msgID,
		FlowNum:   flowNum,
		PhoneBCD:  env.PhoneBCD,
	}
	h.Attribute.SetBodyLen(len(body))
	if env.TotalPackets > 1 {
		h.Attribute.SetFragmented(true)
		h.TotalPackets = env.TotalPackets
		h.PacketIndex = env.PacketIndex
	}
	return EncodeFrame(h, body), nil
}

// SplitParams 按线上长度贪心切分参数表，使每帧消息体不超过 MaxBodyLen。
// 切分结果保持原有次序，拼接后与输入一致。
func SplitParams(params []Param, limit int) [][]Param {
	if limit <= 0 {
		limit = MaxBodyLen
	}
	var groups [][]Param
	var cur []Param
	size := 1 // count字节
	for _, p := range params {
		if len(cur) > 0 && size+p.WireLen() > limit {
			groups = append(groups, cur)
			cur = nil
			size = 1
		}
		cur = append(cur, p)
		size += p.WireLen()
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
