package jt808

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUniResponse(t *testing.T) {
	env := &Envelope{RespondFlowNum: 0x1234, RespondID: UpPositionReport, RespondResult: ResultSuccess}
	body, err := EncodeBody(DownUniResponse, env)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0x02, 0x00, 0x00}, body)
}

func TestEncodeRegisterResponse(t *testing.T) {
	t.Run("成功时附鉴权码", func(t *testing.T) {
		env := &Envelope{RespondFlowNum: 1, RespondResult: ResultRegisterSuccess, AuthCode: [4]byte{0x40, 0xE2, 0x01, 0x00}}
		body, err := EncodeBody(DownRegisterResponse, env)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x40, 0xE2, 0x01, 0x00}, body)
	})
	t.Run("失败时不附鉴权码", func(t *testing.T) {
		env := &Envelope{RespondFlowNum: 1, RespondResult: ResultNoSuchTerminal}
		body, err := EncodeBody(DownRegisterResponse, env)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x01, 0x04}, body)
	})
}

func TestEncodeSetTermParam(t *testing.T) {
	env := &Envelope{Params: []Param{
		NewNumericParam(ParamStartupGPS, 1),          // byte
		NewNumericParam(ParamNtripCorsPort, 2101),    // word
		NewNumericParam(ParamHeartbeatInterval, 60),  // dword
		NewStringParam(ParamNtripCorsIP, "10.0.0.1"), // string
		{ID: 0xDEAD, Type: TypeUnknown},              // 未知类型不上线
	}}
	body, err := EncodeBody(DownSetTermParam, env)
	require.NoError(t, err)

	want := []byte{0x04}
	want = append(want, 0x00, 0x00, 0xF0, 0x00, 0x01, 0x01)
	want = append(want, 0x00, 0x00, 0xF0, 0x31, 0x02, 0x08, 0x35)
	want = append(want, 0x00, 0x00, 0x00, 0x01, 0x04, 0x00, 0x00, 0x00, 0x3C)
	want = append(want, 0x00, 0x00, 0xF0, 0x30, 0x08)
	want = append(want, []byte("10.0.0.1")...)
	assert.Equal(t, want, body)
}

func TestEncodeGetSpecTermParam(t *testing.T) {
	env := &Envelope{ParamIDs: []uint32{0xF000, 0xF001}}
	body, err := EncodeBody(DownGetSpecTermParam, env)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0xF0, 0x00, 0x00, 0x00, 0xF0, 0x01}, body)
}

func TestEncodeGetAllTermParamEmptyBody(t *testing.T) {
	body, err := EncodeBody(DownGetTermParam, &Envelope{})
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestEncodeUpgradePackage(t *testing.T) {
	env := &Envelope{
		UpgradeType:    UpgradeGPS,
		ManufacturerID: [5]byte{0x41, 0x42, 0x43, 0x44, 0x45},
		Version:        "V1.0",
		PacketData:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	body, err := EncodeBody(DownUpgradePackage, env)
	require.NoError(t, err)

	want := []byte{0x34, 0x41, 0x42, 0x43, 0x44, 0x45, 0x04}
	want = append(want, []byte("V1.0")...)
	want = append(want, 0x00, 0x00, 0x00, 0x04, 0xDE, 0xAD, 0xBE, 0xEF)
	assert.Equal(t, want, body)
	// 消息体长度 = 11 + 版本号长 + 数据长
	assert.Equal(t, 11+4+4, len(body))
}

func TestEncodeCircularArea(t *testing.T) {
	area := CircularArea{
		AreaCommon: AreaCommon{ID: 1, Attr: 0x0003,
			StartTime: [6]byte{0x24, 0x01, 0x01, 0x00, 0x00, 0x00},
			EndTime:   [6]byte{0x24, 0x12, 0x31, 0x23, 0x59, 0x59},
			MaxSpeed:  600, Overspeed: 10},
		Center: Coordinate{Latitude: 31230416, Longitude: 121473701},
		Radius: 500,
	}
	env := &Envelope{SetAreaType: AreaAppend, AreaKind: AreaCircular, Circulars: []CircularArea{area}}
	body, err := EncodeBody(DownSetCircularArea, env)
	require.NoError(t, err)
	// settype+count + 固定18 + 时间12 + 限速3
	require.Equal(t, 2+18+12+3, len(body))
	assert.Equal(t, byte(AreaAppend), body[0])
	assert.Equal(t, byte(1), body[1])
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(body[2:6]))
	assert.Equal(t, uint16(0x0003), binary.BigEndian.Uint16(body[6:8]))
	assert.Equal(t, uint32(31230416), binary.BigEndian.Uint32(body[8:12]))
	assert.Equal(t, uint32(121473701), binary.BigEndian.Uint32(body[12:16]))
	assert.Equal(t, uint32(500), binary.BigEndian.Uint32(body[16:20]))
	assert.Equal(t, uint16(600), binary.BigEndian.Uint16(body[32:34]))
	assert.Equal(t, byte(10), body[34])

	t.Run("无可选字段", func(t *testing.T) {
		area := area
		area.Attr = 0
		env := &Envelope{SetAreaType: AreaUpdate, Circulars: []CircularArea{area}}
		body, err := EncodeBody(DownSetCircularArea, env)
		require.NoError(t, err)
		assert.Equal(t, 2+18, len(body))
	})
}

// 矩形区域固定部分为22字节
func TestEncodeRectangleAreaFixedLen(t *testing.T) {
	area := RectangleArea{
		AreaCommon:  AreaCommon{ID: 2, Attr: 0},
		UpperLeft:   Coordinate{Latitude: 31300000, Longitude: 121400000},
		BottomRight: Coordinate{Latitude: 31200000, Longitude: 121500000},
	}
	env := &Envelope{SetAreaType: AreaUpdate, Rectangles: []RectangleArea{area}}
	body, err := EncodeBody(DownSetRectangleArea, env)
	require.NoError(t, err)
	assert.Equal(t, 2+22, len(body))
}

func TestEncodePolygonArea(t *testing.T) {
	area := PolygonArea{
		AreaCommon: AreaCommon{ID: 3, Attr: 0x0002, MaxSpeed: 800, Overspeed: 5},
		Vertices: []Coordinate{
			{Latitude: 31000000, Longitude: 121000000},
			{Latitude: 31100000, Longitude: 121100000},
			{Latitude: 31050000, Longitude: 121200000},
		},
	}
	env := &Envelope{SetAreaType: AreaModify, Polygons: []PolygonArea{area}}
	body, err := EncodeBody(DownSetPolygonArea, env)
	require.NoError(t, err)
	// settype+count + id4+attr2 + 限速3 + 顶点数2 + 3*8
	require.Equal(t, 2+6+3+2+24, len(body))
	// 顶点数在可选字段之后
	assert.Equal(t, uint16(3), binary.BigEndian.Uint16(body[11:13]))
}

func TestEncodeDeleteArea(t *testing.T) {
	env := &Envelope{AreaIDs: []uint32{1, 2}}
	for _, id := range []uint16{DownDelCircularArea, DownDelRectangleArea, DownDelPolygonArea} {
		body, err := EncodeBody(id, env)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x02, 0, 0, 0, 1, 0, 0, 0, 2}, body)
	}
}

func TestEncodePassThrough(t *testing.T) {
	env := &Envelope{PassThrough: &PassThrough{Type: 0x0B, Data: []byte{0x01, 0x02}}}
	body, err := EncodeBody(DownPassThrough, env)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0B, 0x01, 0x02}, body)
}

func TestPackSetsBodyLenAndFragment(t *testing.T) {
	env := &Envelope{
		PhoneBCD:       [6]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0x01},
		RespondFlowNum: 3, RespondID: UpRegister, RespondResult: ResultSuccess,
	}
	wire, err := Pack(DownUniResponse, 10, env)
	require.NoError(t, err)
	h, body, err := DecodeFrame(wire)
	require.NoError(t, err)
	assert.Equal(t, DownUniResponse, h.MessageID)
	assert.Equal(t, uint16(10), h.FlowNum)
	assert.Equal(t, 5, h.Attribute.BodyLen())
	assert.False(t, h.Attribute.Fragmented())
	assert.Len(t, body, 5)

	env.TotalPackets, env.PacketIndex = 3, 2
	wire, err = Pack(DownUniResponse, 11, env)
	require.NoError(t, err)
	h, _, err = DecodeFrame(wire)
	require.NoError(t, err)
	assert.True(t, h.Attribute.Fragmented())
	assert.Equal(t, uint16(3), h.TotalPackets)
	assert.Equal(t, uint16(2), h.PacketIndex)
	// 分包项不计入消息体长度
	assert.Equal(t, 5, h.Attribute.BodyLen())
}

func TestSplitParams(t *testing.T) {
	var params []Param
	for i := 0; i < 300; i++ {
		params = append(params, NewNumericParam(ParamHeartbeatInterval, uint32(i)))
	}
	groups := SplitParams(params, MaxBodyLen)
	require.Greater(t, len(groups), 1)

	var joined []Param
	for _, g := range groups {
		size := 1
		for _, p := range g {
			size += p.WireLen()
		}
		assert.LessOrEqual(t, size, MaxBodyLen)
		joined = append(joined, g...)
	}
	require.Len(t, joined, len(params))
	for i := range params {
		assert.Equal(t, params[i].Uint(), joined[i].Uint())
	}
}

func TestDecodeUniResponse(t *testing.T) {
	h := &Header{MessageID: UpUniResponse, FlowNum: 5}
	body := []byte{0x00, 0x09, 0x81, 0x03, 0x00}
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, body))
	assert.Equal(t, uint16(0x0009), env.RespondFlowNum)
	assert.Equal(t, DownSetTermParam, env.RespondID)
	assert.Equal(t, ResultSuccess, env.RespondResult)
}

func TestDecodeRegister(t *testing.T) {
	h := &Header{MessageID: UpRegister, PhoneBCD: [6]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0x01}, FlowNum: 1}
	body := []byte{0x00, 0x2C, 0x01, 0x2F, 'S', 'U', 'P', 'E', 'R', 0x00, 0x00}
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, body))
	assert.Equal(t, h.PhoneBCD, env.PhoneBCD)
	assert.Equal(t, [5]byte{'S', 'U', 'P', 'E', 'R'}, env.ManufacturerID)
	assert.Equal(t, uint16(1), env.RespondFlowNum)
}

func TestDecodeAuthentication(t *testing.T) {
	h := &Header{MessageID: UpAuthentication, FlowNum: 2}
	h.Attribute.SetBodyLen(4)
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, []byte{0x40, 0xE2, 0x01, 0x00}))
	assert.Equal(t, 4, env.AuthLen)
	assert.Equal(t, [4]byte{0x40, 0xE2, 0x01, 0x00}, env.AuthCode)
}

func TestDecodeGetParamResponse(t *testing.T) {
	body := []byte{0x00, 0x08, 0x05}
	values := []byte{1, 0, 1, 0, 1}
	for i, v := range values {
		body = putU32(body, uint32(0xF000+i))
		body = append(body, 0x01, v)
	}
	h := &Header{MessageID: UpGetParamResponse, FlowNum: 3}
	h.Attribute.SetBodyLen(len(body))
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, body))
	require.Len(t, env.Params, 5)
	for i, p := range env.Params {
		assert.Equal(t, uint32(0xF000+i), p.ID)
		assert.Equal(t, TypeByte, p.Type)
		assert.Equal(t, uint32(values[i]), p.Uint())
	}
}

func TestDecodePositionReport(t *testing.T) {
	var body []byte
	body = putU32(body, 0)         // 报警
	body = putU32(body, 0)         // 状态
	body = putU32(body, 31230416)  // 纬度
	body = putU32(body, 121473701) // 经度
	body = putU16(body, 14)        // 海拔
	body = putU16(body, 420)       // 速度 0.1km/h
	body = putU16(body, 90)        // 方向
	body = append(body, 0x24, 0x03, 0x15, 0x10, 0x20, 0x30)

	h := &Header{MessageID: UpPositionReport, FlowNum: 77}
	h.Attribute.SetBodyLen(len(body))
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, body))

	p := env.Position
	require.NotNil(t, p)
	assert.InDelta(t, 31.230416, p.Latitude, 1e-9)
	assert.InDelta(t, 121.473701, p.Longitude, 1e-9)
	assert.InDelta(t, 42.0, p.SpeedKmh, 1e-9)
	assert.Equal(t, uint16(90), p.Bearing)
	assert.Equal(t, uint16(14), p.Altitude)
	assert.Equal(t, [6]int{24, 3, 15, 10, 20, 30},
		[6]int{p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second})
	assert.False(t, p.HasSatellites)

	// 通用应答回填
	assert.Equal(t, uint16(77), env.RespondFlowNum)
	assert.Equal(t, UpPositionReport, env.RespondID)
	assert.Equal(t, ResultSuccess, env.RespondResult)

	t.Run("附加信息", func(t *testing.T) {
		ext := append(append([]byte{}, body...), 0x31, 0x0A, 0x09, 0x00, 0x00, 0x00, 0x00, 0x30)
		env := &Envelope{}
		h := &Header{MessageID: UpPositionReport}
		h.Attribute.SetBodyLen(len(ext))
		require.NoError(t, DecodeBody(h, env, ext))
		assert.True(t, env.Position.HasSatellites)
		assert.Equal(t, uint8(0x09), env.Position.Satellites)
		assert.True(t, env.Position.HasFixStatus)
		assert.Equal(t, uint8(0x30), env.Position.FixStatus)
	})

	t.Run("截断消息体按零容忍", func(t *testing.T) {
		env := &Envelope{}
		h := &Header{MessageID: UpPositionReport}
		h.Attribute.SetBodyLen(10)
		require.NoError(t, DecodeBody(h, env, body[:10]))
		assert.Zero(t, env.Position.SpeedKmh)
		assert.Zero(t, env.Position.Bearing)
	})
}

func TestDecodeCanBusData(t *testing.T) {
	var body []byte
	body = putU16(body, 2)
	body = append(body, 0x10, 0x20, 0x30, 0x04, 0x05) // 10:20:30.045
	body = putU32(body, 0x18FEF100)
	body = append(body, 1, 2, 3, 4, 5, 6, 7, 8)
	body = putU32(body, 0x18FEE000)
	body = append(body, 8, 7, 6, 5, 4, 3, 2, 1)

	h := &Header{MessageID: UpCanBusData}
	h.Attribute.SetBodyLen(len(body))
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, body))
	require.NotNil(t, env.CanData)
	assert.Equal(t, 10, env.CanData.Hour)
	assert.Equal(t, 20, env.CanData.Minute)
	assert.Equal(t, 30, env.CanData.Second)
	assert.Equal(t, 45, env.CanData.Millisecond)
	require.Len(t, env.CanData.Items, 2)
	assert.Equal(t, uint32(0x18FEF100), env.CanData.Items[0].CanID)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, env.CanData.Items[0].Data)

	t.Run("零条目", func(t *testing.T) {
		h := &Header{MessageID: UpCanBusData}
		h.Attribute.SetBodyLen(2)
		env := &Envelope{}
		require.NoError(t, DecodeBody(h, env, []byte{0x00, 0x00}))
		require.NotNil(t, env.CanData)
		assert.Empty(t, env.CanData.Items)
	})
}

func TestDecodePassThrough(t *testing.T) {
	h := &Header{MessageID: UpPassThrough}
	h.Attribute.SetBodyLen(4)
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, []byte{0x0B, 0xAA, 0xBB, 0xCC}))
	require.NotNil(t, env.PassThrough)
	assert.Equal(t, byte(0x0B), env.PassThrough.Type)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, env.PassThrough.Data)
}

// 参数表往返：0x8103 编码出的参数项经 0x0104 的解析语义还原
func TestParamTupleRoundTrip(t *testing.T) {
	in := []Param{
		NewNumericParam(ParamStartupGPS, 1),
		NewNumericParam(ParamNtripCorsPort, 2101),
		NewStringParam(ParamNtripCorsIP, "rtk.example.com"),
	}
	setBody, err := EncodeBody(DownSetTermParam, &Envelope{Params: in})
	require.NoError(t, err)

	// 0x0104 = 应答流水号 + 与0x8103相同的参数表布局
	respBody := append([]byte{0x00, 0x01}, setBody...)
	h := &Header{MessageID: UpGetParamResponse}
	h.Attribute.SetBodyLen(len(respBody))
	env := &Envelope{}
	require.NoError(t, DecodeBody(h, env, respBody))
	require.Len(t, env.Params, len(in))
	for i := range in {
		assert.Equal(t, in[i].ID, env.Params[i].ID)
		assert.Equal(t, in[i].Value, env.Params[i].Value)
	}
}
