package tcpserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/suxuehui/jt808-deprecated/internal/config"
	"github.com/suxuehui/jt808-deprecated/internal/metrics"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
)

// Server 终端接入网关：监听、握手、稳态会话管理
type Server struct {
	cfg     cfgpkg.TCPConfig
	reg     *registry.Registry
	log     *zap.Logger
	m       *metrics.AppMetrics
	ln      net.Listener
	limiter *ConnectionLimiter
	flow    atomic.Uint32 // 全服务端下行流水号
	stopC   chan struct{}
	wg      sync.WaitGroup
}

// New 创建终端接入网关
func New(cfg cfgpkg.TCPConfig, reg *registry.Registry, logger *zap.Logger, m *metrics.AppMetrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		reg:     reg,
		log:     logger,
		m:       m,
		limiter: NewConnectionLimiter(cfg.MaxConnections),
		stopC:   make(chan struct{}),
	}
}

// NextFlow 分配下一个下行流水号，全服务端单调递增
func (s *Server) NextFlow() uint16 { return uint16(s.flow.Add(1)) }

// Addr 实际监听地址；Start 之前为 nil
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.Info("jt808 gateway listening", zap.String("addr", s.cfg.Addr))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}
			if s.m != nil {
				s.m.TCPAccepted.Inc()
			}
			if err := s.limiter.TryAcquire(); err != nil {
				s.log.Warn("connection rejected",
					zap.String("remote", conn.RemoteAddr().String()),
					zap.Int64("rejectedTotal", s.limiter.Rejected()))
				_ = conn.Close()
				continue
			}
			s.configureKeepalive(conn)
			sess := newSession(s, conn)
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.limiter.Release()
				sess.run()
			}()
		}
	}()
	return nil
}

// configureKeepalive 开启TCP探活：空闲30s后每5s探测一次，3次无应答判死
func (s *Server) configureKeepalive(conn net.Conn) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	idle, intvl, count := s.cfg.KeepaliveIdle, s.cfg.KeepaliveIntvl, s.cfg.KeepaliveCount
	if idle <= 0 {
		idle = 30 * time.Second
	}
	if intvl <= 0 {
		intvl = 5 * time.Second
	}
	if count <= 0 {
		count = 3
	}
	_ = tc.SetKeepAliveConfig(net.KeepAliveConfig{
		Enable:   true,
		Idle:     idle,
		Interval: intvl,
		Count:    count,
	})
}

// Shutdown 优雅关闭监听并等待会话退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func (s *Server) noteRecv(n int) {
	if s.m != nil {
		s.m.BytesReceived.Add(float64(n))
	}
}

func (s *Server) noteSent(n int) {
	if s.m != nil && n > 0 {
		s.m.BytesSent.Add(float64(n))
	}
}

func (s *Server) noteFrame(direction string, ok bool) {
	if s.m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	s.m.FrameTotal.WithLabelValues(direction, result).Inc()
}

func (s *Server) noteRegister(result byte) {
	if s.m == nil {
		return
	}
	labels := map[byte]string{
		0x00: "success",
		0x02: "no_such_vehicle",
		0x03: "already_registered",
		0x04: "no_such_terminal",
	}
	l, ok := labels[result]
	if !ok {
		l = "other"
	}
	s.m.RegisterTotal.WithLabelValues(l).Inc()
}

func (s *Server) noteOnline(delta int) {
	if s.m == nil {
		return
	}
	if delta > 0 {
		s.m.OnlineGauge.Inc()
	} else {
		s.m.OnlineGauge.Dec()
	}
}
