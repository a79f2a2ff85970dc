// Package control 运维控制通道：本地unix流套接字，一行命令换一行应答。
package control

import (
	"bufio"
	"context"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/suxuehui/jt808-deprecated/internal/config"
)

// Handler 处理一行文本命令，返回一行文本应答
type Handler func(line string) string

// Server 控制通道服务端。同一时刻只服务一个客户端：
// 读入一条命令、回写应答、随即关闭连接。
type Server struct {
	path    string
	handler Handler
	log     *zap.Logger
	ln      net.Listener
	stopC   chan struct{}
	wg      sync.WaitGroup
}

// New 创建控制通道服务端
func New(cfg cfgpkg.ControlConfig, h Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{path: cfg.Path, handler: h, log: logger, stopC: make(chan struct{})}
}

// Start 监听控制套接字（非阻塞）。残留的旧套接字文件先清掉。
func (s *Server) Start() error {
	_ = os.Remove(s.path)
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.Info("control channel listening", zap.String("path", s.path))

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
				time.Sleep(50 * time.Millisecond)
				continue
			}
			// 命令逐条串行处理；对话期间不再接受新客户端
			s.serveClient(conn)
		}
	}()
	return nil
}

func (s *Server) serveClient(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	s.log.Info("operator command", zap.String("line", line))
	reply := s.handler(line)
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_, _ = conn.Write([]byte(reply + "\n"))
}

// Shutdown 关闭监听并清理套接字文件
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
	defer os.Remove(s.path)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
