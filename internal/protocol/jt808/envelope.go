package jt808

import (
	"encoding/binary"

	"github.com/suxuehui/jt808-deprecated/internal/bcd"
)

// Coordinate 坐标点，纬度/经度以10^-6度为单位
type Coordinate struct {
	Latitude  uint32
	Longitude uint32
}

// AreaAttr 区域属性字，bit0 按时间生效，bit1 限速
type AreaAttr uint16

func (a AreaAttr) ByTime() bool     { return a&0x0001 != 0 }
func (a AreaAttr) SpeedLimit() bool { return a&0x0002 != 0 }

// AreaCommon 三类区域共有的字段；时间与限速字段仅在对应属性位置位时上线
type AreaCommon struct {
	ID        uint32
	Attr      AreaAttr
	StartTime [6]byte // BCD时间戳
	EndTime   [6]byte
	MaxSpeed  uint16 // 0.1km/h
	Overspeed uint8  // 超速持续时间，秒
}

// CircularArea 圆形区域
type CircularArea struct {
	AreaCommon
	Center Coordinate
	Radius uint32 // 米
}

// RectangleArea 矩形区域
type RectangleArea struct {
	AreaCommon
	UpperLeft   Coordinate
	BottomRight Coordinate
}

// PolygonArea 多边形区域，顶点按边界顺序排列
type PolygonArea struct {
	AreaCommon
	Vertices []Coordinate
}

// AreaKind 当前对话所持有的区域集合种类
type AreaKind int

const (
	AreaNone AreaKind = iota
	AreaCircular
	AreaRectangle
	AreaPolygon
)

// PassThrough 透传消息
type PassThrough struct {
	Type byte
	Data []byte
}

// Position 位置汇报解析结果
type Position struct {
	Alarm     uint32
	Status    uint32
	Latitude  float64 // 度
	Longitude float64
	Altitude  uint16  // 米
	SpeedKmh  float64 // km/h
	Bearing   uint16  // 度
	// BCD时间戳展开：YY MM DD hh mm ss
	Year, Month, Day     int
	Hour, Minute, Second int
	// 附加信息（存在时）
	HasSatellites bool
	Satellites    uint8
	HasFixStatus  bool
	FixStatus     uint8
}

// CanItem 单条CAN总线数据
type CanItem struct {
	CanID uint32
	Data  [8]byte
}

// CanBusUpload CAN总线数据上传
type CanBusUpload struct {
	Hour, Minute, Second int
	Millisecond          int
	Items                []CanItem
}

// Envelope 一次对话使用的协议参数工作区。对话开始时创建，结束即弃，
// 不跨连接共享。
type Envelope struct {
	RespondFlowNum uint16 // 被应答消息的流水号
	RespondID      uint16 // 被应答消息ID
	RespondResult  byte

	PhoneBCD       [6]byte
	AuthCode       [4]byte
	AuthLen        int // 上行鉴权码实际长度
	ManufacturerID [5]byte

	TotalPackets uint16
	PacketIndex  uint16

	Params   []Param  // 待设置或已收到的终端参数
	ParamIDs []uint32 // 待查询的参数ID
	AreaIDs  []uint32 // 待删除的区域ID

	SetAreaType byte
	AreaKind    AreaKind
	Circulars   []CircularArea
	Rectangles  []RectangleArea
	Polygons    []PolygonArea

	UpgradeType   byte
	UpgradeResult byte
	Version       string
	PacketData    []byte

	PassThrough *PassThrough
	Position    *Position
	CanData     *CanBusUpload
}

// Param 终端参数项。Value 保存线上字节序（数值型为大端）。
type Param struct {
	ID    uint32
	Type  ParamType
	Len   uint8
	Value []byte
}

// Uint 按大端解出数值型参数的值
func (p Param) Uint() uint32 {
	var v uint32
	for _, b := range p.Value {
		v = v<<8 | uint32(b)
	}
	return v
}

// NewNumericParam 构造数值型参数，按注册表类型定宽大端编码
func NewNumericParam(id uint32, v uint32) Param {
	t := TypeOf(id)
	n := LengthOf(t)
	p := Param{ID: id, Type: t, Len: n}
	switch n {
	case 1:
		p.Value = []byte{byte(v)}
	case 2:
		p.Value = make([]byte, 2)
		binary.BigEndian.PutUint16(p.Value, uint16(v))
	case 4:
		p.Value = make([]byte, 4)
		binary.BigEndian.PutUint32(p.Value, v)
	}
	return p
}

// NewStringParam 构造字符串型参数
func NewStringParam(id uint32, s string) Param {
	return Param{ID: id, Type: TypeString, Len: uint8(len(s)), Value: []byte(s)}
}

// WireLen 参数项的线上长度：id(4)+len(1)+value
func (p Param) WireLen() int { return 5 + len(p.Value) }

// BCDTime 把 YYMMDDhhmmss 形式的数字串压缩为6字节BCD时间戳
func BCDTime(s string) ([6]byte, error) {
	var out [6]byte
	b, err := bcd.CompressFixed(s, 6)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}
