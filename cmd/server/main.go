package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/suxuehui/jt808-deprecated/internal/command"
	cfgpkg "github.com/suxuehui/jt808-deprecated/internal/config"
	"github.com/suxuehui/jt808-deprecated/internal/control"
	"github.com/suxuehui/jt808-deprecated/internal/httpserver"
	"github.com/suxuehui/jt808-deprecated/internal/logging"
	"github.com/suxuehui/jt808-deprecated/internal/metrics"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
	"github.com/suxuehui/jt808-deprecated/internal/tcpserver"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 终端数据库：启动时整表加载，运行期只读
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		log.Error("load terminal registry", zap.Error(err))
		os.Exit(1)
	}

	// 4) 指标
	promReg := metrics.NewRegistry()
	var appMetrics *metrics.AppMetrics
	var metricsPath string
	if cfg.Metrics.Enable {
		appMetrics = metrics.NewAppMetrics(promReg)
		metricsPath = cfg.Metrics.Path
	}

	// 5) 终端接入网关
	tcpSrv := tcpserver.New(cfg.TCP, reg, log, appMetrics)
	if err := tcpSrv.Start(); err != nil {
		log.Error("tcp gateway start", zap.Error(err))
		os.Exit(1)
	}

	// 6) 运维控制通道
	orch := command.New(reg, log, appMetrics)
	ctl := control.New(cfg.Control, orch.Execute, log)
	if err := ctl.Start(); err != nil {
		log.Error("control channel start", zap.Error(err))
		os.Exit(1)
	}

	// 7) HTTP 管理面
	httpSrv := httpserver.New(cfg.HTTP, reg, metricsPath, metrics.Handler(promReg))
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()

	log.Info("jt808 server started",
		zap.String("tcp", cfg.TCP.Addr),
		zap.String("control", cfg.Control.Path),
		zap.String("http", cfg.HTTP.Addr))

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	_ = ctl.Shutdown(ctx)
	_ = tcpSrv.Shutdown(ctx)
}
