package command

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
	"github.com/suxuehui/jt808-deprecated/internal/tcpserver"
)

// startUpgrade 处理 upgrade <device|gps|cdradio|system> <version> <path>：
// 登记升级任务并拉起后台推送，立即应答。
func (o *Orchestrator) startUpgrade(log *zap.Logger, sess *tcpserver.Session, term *registry.Terminal, args []string) string {
	if len(args) != 3 {
		return ReplyFailed
	}
	var upgradeType byte
	switch args[0] {
	case "device":
		upgradeType = jt808.UpgradeDevice
	case "gps":
		upgradeType = jt808.UpgradeGPS
	case "cdradio":
		upgradeType = jt808.UpgradeCDRadio
	case "system":
		upgradeType = jt808.UpgradeSystem
	default:
		return ReplyFailed
	}
	o.reg.SetPending(term, &registry.PendingUpgrade{
		Type:     upgradeType,
		Version:  args[1],
		FilePath: args[2],
	})
	go o.runUpgrade(log, sess, term)
	return ReplyCompleted
}

// upgradeChunks 升级分包参数：单包数据上限为1023减去11字节固定
// 字段再减版本号串长度；总包数向上取整。版本号过长时总包数为0。
func upgradeChunks(dataLen, versionLen int) (maxChunk, total int) {
	maxChunk = 1023 - 11 - versionLen
	if maxChunk <= 0 {
		return maxChunk, 0
	}
	total = (dataLen + maxChunk - 1) / maxChunk
	if total == 0 {
		total = 1
	}
	return maxChunk, total
}

// runUpgrade 升级推送工作器。固件整文件读入后切块，逐包下发并等待
// 对应的通用应答；包间用限速器节流。套接字异常即中止。
func (o *Orchestrator) runUpgrade(log *zap.Logger, sess *tcpserver.Session, term *registry.Terminal) {
	p := o.reg.TakePending(term)
	if p == nil {
		return
	}
	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		log.Error("upgrade: read firmware", zap.Error(err))
		return
	}
	maxChunk, total := upgradeChunks(len(data), len(p.Version))
	if total == 0 {
		log.Error("upgrade: version string too long", zap.String("version", p.Version))
		return
	}
	manufacturer := o.reg.Manufacturer(term)
	pacer := rate.NewLimiter(rate.Every(time.Millisecond), 1)
	started := time.Now()

	err = sess.Do(func(d *tcpserver.Dialog) error {
		for i := 1; i <= total; i++ {
			start := (i - 1) * maxChunk
			end := start + maxChunk
			if end > len(data) {
				end = len(data)
			}
			env := &jt808.Envelope{
				PhoneBCD:       term.PhoneBCD,
				ManufacturerID: manufacturer,
				UpgradeType:    p.Type,
				Version:        p.Version,
				PacketData:     data[start:end],
			}
			if total > 1 {
				env.TotalPackets = uint16(total)
				env.PacketIndex = uint16(i)
			}
			if err := d.Send(jt808.DownUpgradePackage, env); err != nil {
				return err
			}
			if err := awaitUniResponse(d, jt808.DownUpgradePackage); err != nil {
				return err
			}
			if o.m != nil {
				o.m.UpgradePackets.Inc()
			}
			_ = pacer.Wait(context.Background())
		}
		return nil
	})
	if err != nil {
		log.Error("upgrade aborted", zap.Error(err),
			zap.String("version", p.Version))
		return
	}
	log.Info("upgrade finished",
		zap.String("version", p.Version),
		zap.Int("bytes", len(data)),
		zap.Int("packets", total),
		zap.Duration("elapsed", time.Since(started)))
}
