package jt808

// ParamType 终端参数的逻辑类型
type ParamType uint8

const (
	TypeUnknown ParamType = iota
	TypeByte
	TypeWord
	TypeDword
	TypeString
)

// 标准终端参数ID（JT/T 808-2011 表10）
const (
	ParamHeartbeatInterval   uint32 = 0x0001
	ParamTCPRespondTimeout   uint32 = 0x0002
	ParamTCPRetransTimes     uint32 = 0x0003
	ParamUDPRespondTimeout   uint32 = 0x0004
	ParamUDPRetransTimes     uint32 = 0x0005
	ParamSMSRespondTimeout   uint32 = 0x0006
	ParamSMSRetransTimes     uint32 = 0x0007
	ParamPositionReportWay   uint32 = 0x0020
	ParamPositionReportPlan  uint32 = 0x0021
	ParamNotLoginReportTime  uint32 = 0x0022
	ParamSleepReportTime     uint32 = 0x0027
	ParamAlarmReportTime     uint32 = 0x0028
	ParamDefTimeReportTime   uint32 = 0x0029
	ParamNotLoginReportDist  uint32 = 0x002C
	ParamSleepReportDist     uint32 = 0x002D
	ParamAlarmReportDist     uint32 = 0x002E
	ParamDefTimeReportDist   uint32 = 0x002F
	ParamInflectionAngle     uint32 = 0x0030
	ParamAlarmShieldWord     uint32 = 0x0050
	ParamAlarmSendTxt        uint32 = 0x0051
	ParamAlarmShootSwitch    uint32 = 0x0052
	ParamAlarmShootSaveFlags uint32 = 0x0053
	ParamAlarmKeyFlags       uint32 = 0x0054
	ParamMaxSpeed            uint32 = 0x0055
	ParamGNSSPositionMode    uint32 = 0x0090
	ParamGNSSBaudRate        uint32 = 0x0091
	ParamGNSSOutputFreq      uint32 = 0x0092
	ParamGNSSOutputCollect   uint32 = 0x0093
	ParamGNSSUploadSet       uint32 = 0x0094
	ParamGNSSUploadWay       uint32 = 0x0095
	ParamCAN1CollectInterval uint32 = 0x0100
	ParamCAN1UploadInterval  uint32 = 0x0101
	ParamCAN2CollectInterval uint32 = 0x0102
	ParamCAN2UploadInterval  uint32 = 0x0103
	ParamCANSpecialSet       uint32 = 0x0110
)

// 自定义终端参数ID
const (
	ParamStartupGPS          uint32 = 0xF000
	ParamStartupCDRadio      uint32 = 0xF001
	ParamStartupNtripCors    uint32 = 0xF002
	ParamStartupNtripServ    uint32 = 0xF003
	ParamStartupJT808Serv    uint32 = 0xF004
	ParamGPSLogGGA           uint32 = 0xF010
	ParamGPSLogRMC           uint32 = 0xF011
	ParamGPSLogATT           uint32 = 0xF012
	ParamCDRadioBaudRate     uint32 = 0xF020
	ParamCDRadioWorkFreq     uint32 = 0xF021
	ParamCDRadioRecvMode     uint32 = 0xF022
	ParamCDRadioFormCode     uint32 = 0xF023
	ParamNtripCorsIP         uint32 = 0xF030
	ParamNtripCorsPort       uint32 = 0xF031
	ParamNtripCorsUser       uint32 = 0xF032
	ParamNtripCorsPasswd     uint32 = 0xF033
	ParamNtripCorsMountpoint uint32 = 0xF034
	ParamNtripCorsInterval   uint32 = 0xF035
	ParamNtripServIP         uint32 = 0xF040
	ParamNtripServPort       uint32 = 0xF041
	ParamNtripServUser       uint32 = 0xF042
	ParamNtripServPasswd     uint32 = 0xF043
	ParamNtripServMountpoint uint32 = 0xF044
	ParamNtripServInterval   uint32 = 0xF045
	ParamJT808ServIP         uint32 = 0xF050
	ParamJT808ServPort       uint32 = 0xF051
	ParamJT808ServPhone      uint32 = 0xF052
	ParamJT808ServInterval   uint32 = 0xF053
)

// paramTypes 参数注册表：ID到逻辑类型的封闭映射，表外ID按未知处理
var paramTypes = map[uint32]ParamType{
	ParamGNSSPositionMode:  TypeByte,
	ParamGNSSBaudRate:      TypeByte,
	ParamGNSSOutputFreq:    TypeByte,
	ParamGNSSUploadWay:     TypeByte,
	ParamStartupGPS:        TypeByte,
	ParamStartupCDRadio:    TypeByte,
	ParamStartupNtripCors:  TypeByte,
	ParamStartupNtripServ:  TypeByte,
	ParamStartupJT808Serv:  TypeByte,
	ParamGPSLogGGA:         TypeByte,
	ParamGPSLogRMC:         TypeByte,
	ParamGPSLogATT:         TypeByte,
	ParamCDRadioRecvMode:   TypeByte,
	ParamCDRadioFormCode:   TypeByte,
	ParamNtripCorsInterval: TypeByte,
	ParamNtripServInterval: TypeByte,
	ParamJT808ServInterval: TypeByte,

	ParamCAN1UploadInterval: TypeWord,
	ParamCAN2UploadInterval: TypeWord,
	ParamCDRadioWorkFreq:    TypeWord,
	ParamNtripCorsPort:      TypeWord,
	ParamNtripServPort:      TypeWord,
	ParamJT808ServPort:      TypeWord,

	ParamHeartbeatInterval:   TypeDword,
	ParamTCPRespondTimeout:   TypeDword,
	ParamTCPRetransTimes:     TypeDword,
	ParamUDPRespondTimeout:   TypeDword,
	ParamUDPRetransTimes:     TypeDword,
	ParamSMSRespondTimeout:   TypeDword,
	ParamSMSRetransTimes:     TypeDword,
	ParamPositionReportWay:   TypeDword,
	ParamPositionReportPlan:  TypeDword,
	ParamNotLoginReportTime:  TypeDword,
	ParamSleepReportTime:     TypeDword,
	ParamAlarmReportTime:     TypeDword,
	ParamDefTimeReportTime:   TypeDword,
	ParamNotLoginReportDist:  TypeDword,
	ParamSleepReportDist:     TypeDword,
	ParamAlarmReportDist:     TypeDword,
	ParamDefTimeReportDist:   TypeDword,
	ParamInflectionAngle:     TypeDword,
	ParamAlarmShieldWord:     TypeDword,
	ParamAlarmSendTxt:        TypeDword,
	ParamAlarmShootSwitch:    TypeDword,
	ParamAlarmShootSaveFlags: TypeDword,
	ParamAlarmKeyFlags:       TypeDword,
	ParamMaxSpeed:            TypeDword,
	ParamGNSSOutputCollect:   TypeDword,
	ParamGNSSUploadSet:       TypeDword,
	ParamCAN1CollectInterval: TypeDword,
	ParamCAN2CollectInterval: TypeDword,
	ParamCDRadioBaudRate:     TypeDword,

	ParamCANSpecialSet:       TypeString,
	ParamNtripCorsIP:         TypeString,
	ParamNtripCorsUser:       TypeString,
	ParamNtripCorsPasswd:     TypeString,
	ParamNtripCorsMountpoint: TypeString,
	ParamNtripServIP:         TypeString,
	ParamNtripServUser:       TypeString,
	ParamNtripServPasswd:     TypeString,
	ParamNtripServMountpoint: TypeString,
	ParamJT808ServIP:         TypeString,
	ParamJT808ServPhone:      TypeString,
}

// TypeOf 查询参数类型，表外ID返回未知
func TypeOf(id uint32) ParamType {
	if t, ok := paramTypes[id]; ok {
		return t
	}
	return TypeUnknown
}

// LengthOf 数值型参数的固定字节长度；字符串与未知类型为0，
// 实际长度由值本身决定
func LengthOf(t ParamType) uint8 {
	switch t {
	case TypeByte:
		return 1
	case TypeWord:
		return 2
	case TypeDword:
		return 4
	default:
		return 0
	}
}
