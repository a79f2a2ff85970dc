// Package command 把运维控制通道上的文本命令翻译成下行协议对话，
// 并把对话结果整理成单行文本应答。
package command

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suxuehui/jt808-deprecated/internal/metrics"
	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
	"github.com/suxuehui/jt808-deprecated/internal/tcpserver"
)

// 控制通道的固定应答串
const (
	ReplyCompleted    = "operation completed."
	ReplyFailed       = "operation failed!!!"
	ReplyNotConnected = "device has not connect!!!"
	ReplyNoDevice     = "has not such device!!!"
)

// Orchestrator 命令编排器。命令串行执行：每条命令独占目标终端的
// 套接字完成一次同步对话。
type Orchestrator struct {
	reg *registry.Registry
	log *zap.Logger
	m   *metrics.AppMetrics
}

// New 创建命令编排器
func New(reg *registry.Registry, logger *zap.Logger, m *metrics.AppMetrics) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{reg: reg, log: logger, m: m}
}

// Execute 执行一行命令：<phone> <verb> [args...]
func (o *Orchestrator) Execute(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return ReplyFailed
	}
	term := o.reg.Find(tokens[0])
	if term == nil {
		return ReplyNoDevice
	}
	sess, _ := o.reg.Conn(term).(*tcpserver.Session)
	if sess == nil {
		return ReplyNotConnected
	}

	verb, args := tokens[1], tokens[2:]
	log := o.log.With(
		zap.String("phone", term.Phone),
		zap.String("verb", verb),
		zap.String("trace", uuid.NewString()))

	reply := o.dispatch(log, sess, term, verb, args)
	if o.m != nil {
		result := "ok"
		if reply == ReplyFailed {
			result = "error"
		}
		o.m.DialogTotal.WithLabelValues(verb, result).Inc()
	}
	log.Info("command finished", zap.String("reply", reply))
	return reply
}

func (o *Orchestrator) dispatch(log *zap.Logger, sess *tcpserver.Session, term *registry.Terminal, verb string, args []string) string {
	switch verb {
	case "upgrade":
		return o.startUpgrade(log, sess, term, args)

	case "get":
		if len(args) != 1 {
			return ReplyFailed
		}
		return o.getProfile(sess, term, args[0])

	case "set":
		if len(args) < 1 {
			return ReplyFailed
		}
		return o.setProfile(sess, term, args[0], args[1:])

	case "getterminalparameter":
		ids := make([]uint32, 0, len(args))
		for _, a := range args {
			v, err := strconv.ParseUint(a, 16, 32)
			if err != nil {
				return ReplyFailed
			}
			ids = append(ids, uint32(v))
		}
		params, err := o.getParams(sess, term, ids)
		if err != nil {
			return ReplyFailed
		}
		return formatParamList(params)

	case "setterminalparameter":
		params, err := parseParamArgs(args)
		if err != nil {
			return ReplyFailed
		}
		if len(params) == 0 {
			return ReplyCompleted
		}
		if err := o.setParams(sess, term, params); err != nil {
			return ReplyFailed
		}
		return ReplyCompleted

	case "setcirculararea":
		env, err := parseCircularAreas(args)
		if err != nil {
			return ReplyFailed
		}
		if err := o.sendAreaCommand(sess, term, jt808.DownSetCircularArea, env); err != nil {
			return ReplyFailed
		}
		return ReplyCompleted

	case "setrectanglearea":
		env, err := parseRectangleAreas(args)
		if err != nil {
			return ReplyFailed
		}
		if err := o.sendAreaCommand(sess, term, jt808.DownSetRectangleArea, env); err != nil {
			return ReplyFailed
		}
		return ReplyCompleted

	case "setpolygonalarea":
		env, err := parsePolygonAreas(args)
		if err != nil {
			return ReplyFailed
		}
		if err := o.sendAreaCommand(sess, term, jt808.DownSetPolygonArea, env); err != nil {
			return ReplyFailed
		}
		return ReplyCompleted

	case "delcirculararea":
		return o.delAreas(sess, term, jt808.DownDelCircularArea, args)
	case "delrectanglearea":
		return o.delAreas(sess, term, jt808.DownDelRectangleArea, args)
	case "delpolygonalarea":
		return o.delAreas(sess, term, jt808.DownDelPolygonArea, args)

	default:
		return ReplyFailed
	}
}

func (o *Orchestrator) delAreas(sess *tcpserver.Session, term *registry.Terminal, msgID uint16, args []string) string {
	env := &jt808.Envelope{}
	for _, a := range args {
		v, err := strconv.ParseUint(a, 16, 32)
		if err != nil {
			return ReplyFailed
		}
		env.AreaIDs = append(env.AreaIDs, uint32(v))
	}
	if err := o.sendAreaCommand(sess, term, msgID, env); err != nil {
		return ReplyFailed
	}
	return ReplyCompleted
}

// parseParamArgs 解析 id:value 形式的参数项；未知类型的ID静默跳过
func parseParamArgs(args []string) ([]jt808.Param, error) {
	var params []jt808.Param
	for _, a := range args {
		idStr, valStr, ok := strings.Cut(a, ":")
		if !ok {
			return nil, errBadArgument
		}
		id64, err := strconv.ParseUint(idStr, 16, 32)
		if err != nil {
			return nil, errBadArgument
		}
		id := uint32(id64)
		switch jt808.TypeOf(id) {
		case jt808.TypeUnknown:
			continue
		case jt808.TypeString:
			params = append(params, jt808.NewStringParam(id, valStr))
		default:
			v, err := strconv.ParseUint(valStr, 10, 32)
			if err != nil {
				return nil, errBadArgument
			}
			params = append(params, jt808.NewNumericParam(id, uint32(v)))
		}
	}
	return params, nil
}

// formatParamList 生成 getterminalparameter 的应答行
func formatParamList(params []jt808.Param) string {
	var sb strings.Builder
	sb.WriteString("terminal parameter(id:value): ")
	for i, p := range params {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(formatParamID(p.ID))
		sb.WriteString(":")
		sb.WriteString(paramValueString(p))
	}
	return sb.String()
}

func formatParamID(id uint32) string {
	s := strconv.FormatUint(uint64(id), 16)
	s = strings.ToUpper(s)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func paramValueString(p jt808.Param) string {
	if p.Type == jt808.TypeString || p.Type == jt808.TypeUnknown {
		return string(p.Value)
	}
	return strconv.FormatUint(uint64(p.Uint()), 10)
}
