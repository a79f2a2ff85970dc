package tcpserver

import (
	"errors"
	"sync/atomic"
)

var errTooManyConnections = errors.New("connection limit exceeded")

// ConnectionLimiter 连接数上限（信号量）
type ConnectionLimiter struct {
	sem      chan struct{}
	maxConn  int
	rejected atomic.Int64
}

// NewConnectionLimiter 创建连接限流器
func NewConnectionLimiter(maxConn int) *ConnectionLimiter {
	if maxConn <= 0 {
		maxConn = 512
	}
	return &ConnectionLimiter{sem: make(chan struct{}, maxConn), maxConn: maxConn}
}

// TryAcquire 非阻塞获取许可；超限时立即失败
func (l *ConnectionLimiter) TryAcquire() error {
	select {
	case l.sem <- struct{}{}:
		return nil
	default:
		l.rejected.Add(1)
		return errTooManyConnections
	}
}

// Release 释放许可
func (l *ConnectionLimiter) Release() {
	select {
	case <-l.sem:
	default:
	}
}

// Current 当前占用数
func (l *ConnectionLimiter) Current() int { return len(l.sem) }

// Rejected 累计拒绝数
func (l *ConnectionLimiter) Rejected() int64 { return l.rejected.Load() }
