package tcpserver

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
)

const (
	// 稳态下的轮询读超时：每次超时醒来检查是否有对话请求
	pollInterval = 200 * time.Millisecond
	// 对话期内等待终端应答的上限，与keepalive探活窗口同量级
	dialogTimeout = 45 * time.Second

	writeTimeout = 10 * time.Second
)

// ErrSessionClosed 会话已关闭，对话无法执行
var ErrSessionClosed = errors.New("tcpserver: session closed")

type dialogReq struct {
	fn   func(*Dialog) error
	done chan error
}

// Session 一条终端连接。注册/鉴权握手通过后进入稳态：
// 会话goroutine独占套接字收发，运维对话经 Do 移交到该goroutine内
// 同步执行，等价于把连接从多路复用器上摘下再挂回。
type Session struct {
	srv  *Server
	conn net.Conn
	fr   *frameReader
	log  *zap.Logger

	term *registry.Terminal

	dialogC chan dialogReq
	doneC   chan struct{}
	fatal   error
}

func newSession(srv *Server, conn net.Conn) *Session {
	return &Session{
		srv:     srv,
		conn:    conn,
		fr:      newFrameReader(bufio.NewReader(conn)),
		log:     srv.log.With(zap.String("remote", conn.RemoteAddr().String())),
		dialogC: make(chan dialogReq),
		doneC:   make(chan struct{}),
	}
}

// Phone 绑定终端的手机号；稳态前为空串
func (s *Session) Phone() string {
	if s.term == nil {
		return ""
	}
	return s.term.Phone
}

// Done 会话关闭通知
func (s *Session) Done() <-chan struct{} { return s.doneC }

func (s *Session) run() {
	defer s.cleanup()
	if !s.handshake() {
		return
	}
	s.steady()
}

// handshake 驱动 注册 -> 鉴权 -> 稳态 的握手。任何偏离协议的
// 消息都不回应，直接断开。
func (s *Session) handshake() bool {
	env := &jt808.Envelope{}

	h, body, err := s.recvFrame(0)
	if err != nil {
		return false
	}
	if h.MessageID != jt808.UpRegister {
		s.log.Warn("handshake: expected register",
			zap.Uint16("messageId", h.MessageID))
		return false
	}
	if err := jt808.DecodeBody(h, env, body); err != nil {
		return false
	}

	var term *registry.Terminal
	if s.srv.reg.Empty() {
		env.RespondResult = jt808.ResultNoSuchVehicle
	} else if term = s.srv.reg.FindByBCD(h.PhoneBCD); term == nil {
		env.RespondResult = jt808.ResultNoSuchTerminal
	} else if s.srv.reg.Online(term) {
		env.RespondResult = jt808.ResultTerminalRegistered
	} else {
		env.RespondResult = jt808.ResultRegisterSuccess
		env.AuthCode = term.AuthCode
	}
	s.srv.noteRegister(env.RespondResult)
	if err := s.send(jt808.DownRegisterResponse, env); err != nil {
		return false
	}
	if env.RespondResult != jt808.ResultRegisterSuccess {
		s.log.Info("register rejected",
			zap.Uint8("result", env.RespondResult))
		return false
	}

	h, body, err = s.recvFrame(0)
	if err != nil {
		return false
	}
	if h.MessageID != jt808.UpAuthentication {
		s.log.Warn("handshake: expected authentication",
			zap.Uint16("messageId", h.MessageID))
		return false
	}
	if err := jt808.DecodeBody(h, env, body); err != nil {
		return false
	}
	if env.AuthLen > 0 && bytes.Equal(env.AuthCode[:env.AuthLen], term.AuthCode[:env.AuthLen]) {
		env.RespondResult = jt808.ResultSuccess
	} else {
		env.RespondResult = jt808.ResultFailure
	}
	if err := s.send(jt808.DownUniResponse, env); err != nil {
		return false
	}
	if env.RespondResult != jt808.ResultSuccess {
		s.log.Info("authentication failed", zap.String("phone", term.Phone))
		return false
	}

	// 注册帧里带上来的制造商ID在鉴权通过后才落到记录上
	s.srv.reg.SetManufacturer(term, env.ManufacturerID)
	s.srv.reg.Bind(term, s)
	s.term = term
	s.log = s.log.With(zap.String("phone", term.Phone))
	s.srv.noteOnline(1)
	s.log.Info("terminal online")
	return true
}

func (s *Session) steady() {
	for {
		select {
		case <-s.srv.stopC:
			return
		case req := <-s.dialogC:
			req.done <- req.fn(&Dialog{s: s})
			if s.fatal != nil {
				return
			}
			continue
		default:
		}

		h, body, err := s.recvFrame(pollInterval)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			s.log.Info("terminal connection lost", zap.Error(err))
			return
		}
		s.handleUplink(h, body)
		if s.fatal != nil {
			return
		}
	}
}

func (s *Session) handleUplink(h *jt808.Header, body []byte) {
	env := &jt808.Envelope{PhoneBCD: h.PhoneBCD}
	if err := jt808.DecodeBody(h, env, body); err != nil {
		// 不认识的上行只记日志，不断开也不应答
		s.log.Debug("unhandled uplink",
			zap.Uint16("messageId", h.MessageID), zap.Error(err))
		return
	}

	switch h.MessageID {
	case jt808.UpPositionReport:
		p := env.Position
		s.log.Info("position report",
			zap.Float64("lat", p.Latitude), zap.Float64("lon", p.Longitude),
			zap.Float64("speedKmh", p.SpeedKmh), zap.Uint16("bearing", p.Bearing),
			zap.Uint32("alarm", p.Alarm), zap.Uint32("status", p.Status))
		if err := s.send(jt808.DownUniResponse, env); err != nil {
			s.fatal = err
		}
	case jt808.UpUpgradeResult:
		s.log.Info("upgrade result", zap.Uint8("result", env.UpgradeResult))
		if err := s.send(jt808.DownUniResponse, env); err != nil {
			s.fatal = err
		}
	case jt808.UpPassThrough:
		s.log.Info("uplink passthrough",
			zap.Uint8("type", env.PassThrough.Type),
			zap.Int("size", len(env.PassThrough.Data)))
	case jt808.UpCanBusData:
		s.log.Info("can bus data", zap.Int("items", len(env.CanData.Items)))
	default:
		// 稳态下其余上行不做通用应答
	}
}

// recvFrame 读取并拆开一条帧。poll 为0时阻塞等待。
func (s *Session) recvFrame(poll time.Duration) (*jt808.Header, []byte, error) {
	if poll > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(poll))
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}
	wire, err := s.fr.next()
	if err != nil {
		return nil, nil, err
	}
	s.srv.noteRecv(len(wire))
	h, body, err := jt808.DecodeFrame(wire)
	if err != nil {
		s.srv.noteFrame("up", false)
		return nil, nil, err
	}
	s.srv.noteFrame("up", true)
	return h, body, nil
}

func (s *Session) send(msgID uint16, env *jt808.Envelope) error {
	frame, err := jt808.Pack(msgID, s.srv.NextFlow(), env)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	n, err := s.conn.Write(frame)
	s.srv.noteSent(n)
	s.srv.noteFrame("down", err == nil)
	return err
}

func (s *Session) cleanup() {
	if s.term != nil {
		s.srv.reg.Unbind(s.term, s)
		s.srv.noteOnline(-1)
		s.log.Info("terminal offline")
	}
	_ = s.conn.Close()
	close(s.doneC)
}

// Do 把一次对话移交给会话goroutine同步执行。对话期间稳态读循环
// 挂起，套接字归对话独占；对话返回后恢复。会话已关闭时立即失败。
func (s *Session) Do(fn func(*Dialog) error) error {
	req := dialogReq{fn: fn, done: make(chan error, 1)}
	select {
	case s.dialogC <- req:
	case <-s.doneC:
		return ErrSessionClosed
	}
	select {
	case err := <-req.done:
		return err
	case <-s.doneC:
		return ErrSessionClosed
	}
}

// Dialog 对话期内的同步收发句柄。任何收发失败都会使会话在对话
// 结束后关闭并解除注册绑定。
type Dialog struct {
	s *Session
}

// Send 打包并发送一条下行帧
func (d *Dialog) Send(msgID uint16, env *jt808.Envelope) error {
	if err := d.s.send(msgID, env); err != nil {
		d.s.fatal = err
		return err
	}
	return nil
}

// Recv 等待并拆开下一条上行帧
func (d *Dialog) Recv() (*jt808.Header, []byte, error) {
	h, body, err := d.s.recvFrame(dialogTimeout)
	if err != nil {
		d.s.fatal = err
		return nil, nil, err
	}
	return h, body, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
