package jt808

import (
	"fmt"

	"github.com/suxuehui/jt808-deprecated/internal/bcd"
)

// reader 消息体游标。越界读取返回零值：上行消息缺失的尾部
// 可选字段一律按零容忍。
type reader struct {
	b   []byte
	off int
}

func (r *reader) u8() byte {
	if r.off+1 > len(r.b) {
		r.off = len(r.b)
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) u16() uint16 {
	return uint16(r.u8())<<8 | uint16(r.u8())
}

func (r *reader) u32() uint32 {
	return uint32(r.u16())<<16 | uint32(r.u16())
}

func (r *reader) take(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = r.u8()
	}
	return out
}

func (r *reader) remain() int { return len(r.b) - r.off }

// DecodeBody 按消息ID解析上行消息体并填充信封。信封中的应答流水号
// 与应答ID先取自消息头，通用应答再以消息体内的值覆盖。
func DecodeBody(h *Header, env *Envelope, body []byte) error {
	env.RespondFlowNum = h.FlowNum
	env.RespondID = h.MessageID
	r := &reader{b: body}

	switch h.MessageID {
	case UpUniResponse:
		env.RespondFlowNum = r.u16()
		env.RespondID = r.u16()
		env.RespondResult = r.u8()

	case UpRegister:
		env.PhoneBCD = h.PhoneBCD
		// 消息体: 省域ID(2) 市县域ID(2) 制造商ID(5) ...
		r.take(4)
		copy(env.ManufacturerID[:], r.take(5))

	case UpAuthentication:
		env.PhoneBCD = h.PhoneBCD
		n := h.Attribute.BodyLen()
		if n > len(body) {
			n = len(body)
		}
		if n > len(env.AuthCode) {
			n = len(env.AuthCode)
		}
		copy(env.AuthCode[:], body[:n])
		env.AuthLen = n

	case UpGetParamResponse:
		env.TotalPackets = h.TotalPackets
		env.PacketIndex = h.PacketIndex
		r.u16() // 应答流水号
		count := int(r.u8())
		for i := 0; i < count && r.remain() >= 5; i++ {
			id := r.u32()
			n := int(r.u8())
			p := Param{ID: id, Type: TypeOf(id), Len: uint8(n), Value: r.take(n)}
			env.Params = append(env.Params, p)
		}
		env.RespondResult = ResultSuccess

	case UpUpgradeResult:
		// 消息体: 应答流水号(2) 应答ID(2) 升级结果(1)
		r.take(4)
		env.UpgradeResult = r.u8()
		env.RespondResult = ResultSuccess

	case UpPositionReport:
		p := &Position{
			Alarm:  r.u32(),
			Status: r.u32(),
		}
		p.Latitude = float64(r.u32()) / 1e6
		p.Longitude = float64(r.u32()) / 1e6
		p.Altitude = r.u16()
		p.SpeedKmh = float64(r.u16()) / 10.0
		p.Bearing = r.u16()
		ts := r.take(6)
		p.Year = bcd.FromByte(ts[0])
		p.Month = bcd.FromByte(ts[1])
		p.Day = bcd.FromByte(ts[2])
		p.Hour = bcd.FromByte(ts[3])
		p.Minute = bcd.FromByte(ts[4])
		p.Second = bcd.FromByte(ts[5])
		if len(body) >= 31 {
			p.HasSatellites = true
			p.Satellites = body[30]
		}
		if len(body) >= 36 {
			p.HasFixStatus = true
			p.FixStatus = body[35]
		}
		env.Position = p
		env.RespondResult = ResultSuccess

	case UpPassThrough:
		n := h.Attribute.BodyLen()
		if n == 0 || n > len(body) {
			n = len(body)
		}
		pt := &PassThrough{Type: r.u8()}
		if n > 1 {
			pt.Data = append(pt.Data, body[1:n]...)
		}
		env.PassThrough = pt
		env.RespondResult = ResultSuccess

	case UpCanBusData:
		up := &CanBusUpload{}
		count := int(r.u16())
		if count > 0 {
			ts := r.take(5)
			up.Hour = bcd.FromByte(ts[0])
			up.Minute = bcd.FromByte(ts[1])
			up.Second = bcd.FromByte(ts[2])
			up.Millisecond = bcd.FromByte(ts[3])*10 + bcd.FromByte(ts[4])
			for i := 0; i < count && r.remain() >= 12; i++ {
				item := CanItem{CanID: r.u32()}
				copy(item.Data[:], r.take(8))
				up.Items = append(up.Items, item)
			}
		}
		env.CanData = up

	default:
		return fmt.Errorf("jt808: unsupported uplink message 0x%04X", h.MessageID)
	}
	return nil
}
