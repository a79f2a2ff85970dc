package command

import (
	"strconv"
	"strings"

	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
	"github.com/suxuehui/jt808-deprecated/internal/tcpserver"
)

// profileIDs 高层命令到参数ID列表的固定映射
var profileIDs = map[string][]uint32{
	"startup": {
		jt808.ParamStartupGPS,
		jt808.ParamStartupCDRadio,
		jt808.ParamStartupNtripCors,
		jt808.ParamStartupNtripServ,
		jt808.ParamStartupJT808Serv,
	},
	"gps": {
		jt808.ParamGPSLogGGA,
		jt808.ParamGPSLogRMC,
		jt808.ParamGPSLogATT,
	},
	"cdradio": {
		jt808.ParamCDRadioBaudRate,
		jt808.ParamCDRadioWorkFreq,
		jt808.ParamCDRadioRecvMode,
		jt808.ParamCDRadioFormCode,
	},
	"ntripcors": {
		jt808.ParamNtripCorsIP,
		jt808.ParamNtripCorsPort,
		jt808.ParamNtripCorsUser,
		jt808.ParamNtripCorsPasswd,
		jt808.ParamNtripCorsMountpoint,
		jt808.ParamNtripCorsInterval,
	},
	"ntripservice": {
		jt808.ParamNtripServIP,
		jt808.ParamNtripServPort,
		jt808.ParamNtripServUser,
		jt808.ParamNtripServPasswd,
		jt808.ParamNtripServMountpoint,
		jt808.ParamNtripServInterval,
	},
	"jt808service": {
		jt808.ParamJT808ServIP,
		jt808.ParamJT808ServPort,
		jt808.ParamJT808ServPhone,
		jt808.ParamJT808ServInterval,
	},
}

// flagNames startup/gps 布尔参数的展示名（也是 set 命令里的开关名）
var flagNames = map[uint32]string{
	jt808.ParamStartupGPS:       "gps",
	jt808.ParamStartupCDRadio:   "cdradio",
	jt808.ParamStartupNtripCors: "ntripcors",
	jt808.ParamStartupNtripServ: "ntripservice",
	jt808.ParamStartupJT808Serv: "jt808service",
	jt808.ParamGPSLogGGA:        "LOGGGA",
	jt808.ParamGPSLogRMC:        "LOGRMC",
	jt808.ParamGPSLogATT:        "LOGATT",
}

// keyNames 键值型配置组的展示键名
var keyNames = map[uint32]string{
	jt808.ParamCDRadioBaudRate: "bauderate",
	jt808.ParamCDRadioWorkFreq: "workfreqpoint",
	jt808.ParamCDRadioRecvMode: "recvmode",
	jt808.ParamCDRadioFormCode: "formcode",

	jt808.ParamNtripCorsIP:         "ip",
	jt808.ParamNtripCorsPort:       "port",
	jt808.ParamNtripCorsUser:       "username",
	jt808.ParamNtripCorsPasswd:     "password",
	jt808.ParamNtripCorsMountpoint: "mountpoint",
	jt808.ParamNtripCorsInterval:   "reportinterval",

	jt808.ParamNtripServIP:         "ip",
	jt808.ParamNtripServPort:       "port",
	jt808.ParamNtripServUser:       "username",
	jt808.ParamNtripServPasswd:     "password",
	jt808.ParamNtripServMountpoint: "mountpoint",
	jt808.ParamNtripServInterval:   "reportinterval",

	jt808.ParamJT808ServIP:       "ip",
	jt808.ParamJT808ServPort:     "port",
	jt808.ParamJT808ServPhone:    "phonenum",
	jt808.ParamJT808ServInterval: "reportinterval",
}

func (o *Orchestrator) getProfile(sess *tcpserver.Session, term *registry.Terminal, name string) string {
	ids, ok := profileIDs[name]
	if !ok {
		return ReplyFailed
	}
	params, err := o.getParams(sess, term, ids)
	if err != nil {
		return ReplyFailed
	}
	return formatProfile(name, params)
}

// formatProfile 生成 get <profile> 的应答行。
// startup/gps 只列出打开的开关名；其余配置组渲染 key=value 对。
func formatProfile(name string, params []jt808.Param) string {
	var sb strings.Builder
	switch name {
	case "startup", "gps":
		sb.WriteString(name + ":")
		for _, p := range params {
			flag := flagNames[p.ID]
			if flag == "" || p.Uint() != 1 {
				continue
			}
			sb.WriteString(" " + flag)
		}
	default:
		sb.WriteString(name + ": ")
		first := true
		for _, p := range params {
			key := keyNames[p.ID]
			if key == "" {
				continue
			}
			if !first {
				sb.WriteString(",")
			}
			first = false
			sb.WriteString(key + "=" + paramValueString(p))
		}
	}
	return sb.String()
}

func (o *Orchestrator) setProfile(sess *tcpserver.Session, term *registry.Terminal, name string, args []string) string {
	ids, ok := profileIDs[name]
	if !ok {
		return ReplyFailed
	}

	var params []jt808.Param
	switch name {
	case "startup", "gps":
		// 开关名出现即置1，缺席置0
		for _, id := range ids {
			v := uint32(0)
			for _, a := range args {
				if a == flagNames[id] {
					v = 1
					break
				}
			}
			params = append(params, jt808.NewNumericParam(id, v))
		}
	default:
		// 位置参数按ID顺序一一对应，个数必须吻合
		if len(args) != len(ids) {
			return ReplyFailed
		}
		for i, id := range ids {
			if jt808.TypeOf(id) == jt808.TypeString {
				params = append(params, jt808.NewStringParam(id, args[i]))
				continue
			}
			v, err := strconv.ParseUint(args[i], 10, 32)
			if err != nil {
				return ReplyFailed
			}
			params = append(params, jt808.NewNumericParam(id, uint32(v)))
		}
	}

	if err := o.setParams(sess, term, params); err != nil {
		return ReplyFailed
	}
	return ReplyCompleted
}
