package jt808

// 下行消息ID
const (
	DownUniResponse      uint16 = 0x8001
	DownRegisterResponse uint16 = 0x8100
	DownSetTermParam     uint16 = 0x8103
	DownGetTermParam     uint16 = 0x8104
	DownGetSpecTermParam uint16 = 0x8106
	DownUpgradePackage   uint16 = 0x8108
	DownSetCircularArea  uint16 = 0x8600
	DownDelCircularArea  uint16 = 0x8601
	DownSetRectangleArea uint16 = 0x8602
	DownDelRectangleArea uint16 = 0x8603
	DownSetPolygonArea   uint16 = 0x8604
	DownDelPolygonArea   uint16 = 0x8605
	DownPassThrough      uint16 = 0x8900
)

// 上行消息ID
const (
	UpUniResponse      uint16 = 0x0001
	UpRegister         uint16 = 0x0100
	UpAuthentication   uint16 = 0x0102
	UpGetParamResponse uint16 = 0x0104
	UpUpgradeResult    uint16 = 0x0108
	UpPositionReport   uint16 = 0x0200
	UpCanBusData       uint16 = 0x0705
	UpPassThrough      uint16 = 0x0900
)

// 通用应答结果
const (
	ResultSuccess      byte = 0x00
	ResultFailure      byte = 0x01
	ResultMessageWrong byte = 0x02
	ResultNotSupport   byte = 0x03
)

// 注册应答结果
const (
	ResultRegisterSuccess    byte = 0x00
	ResultVehicleRegistered  byte = 0x01
	ResultNoSuchVehicle      byte = 0x02
	ResultTerminalRegistered byte = 0x03
	ResultNoSuchTerminal     byte = 0x04
)

// 单帧消息体长度上限，超过后下行消息分包发送
const MaxBodyLen = 1022

// 升级类型
const (
	UpgradeDevice  byte = 0x00
	UpgradeGPS     byte = 0x34
	UpgradeCDRadio byte = 0x35
	UpgradeSystem  byte = 0x36
)

// 区域设置属性
const (
	AreaUpdate byte = 0x00
	AreaAppend byte = 0x01
	AreaModify byte = 0x02
)
