package task

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper 清理过期限流 key
type Sweeper interface {
	Sweep(maxAge time.Duration) int
}

// LimiterSweepTask 定时清理限流器中的过期 key，防止内存增长
type LimiterSweepTask struct {
	sweeper Sweeper
	maxAge  time.Duration
	cron    *cron.Cron
}

// NewLimiterSweepTask 创建清理任务
func NewLimiterSweepTask(sweeper Sweeper, maxAge time.Duration) *LimiterSweepTask {
	return &LimiterSweepTask{
		sweeper: sweeper,
		maxAge:  maxAge,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start 每 5 分钟清理一次
func (t *LimiterSweepTask) Start() error {
	_, err := t.cron.AddFunc("0 */5 * * * *", func() {
		if n := t.sweeper.Sweep(t.maxAge); n > 0 {
			zap.L().Debug("[Task] limiter keys swept", zap.Int("count", n))
		}
	})
	if err != nil {
		return err
	}
	t.cron.Start()
	return nil
}

// Stop 停止任务
func (t *LimiterSweepTask) Stop() {
	<-t.cron.Stop().Done()
}
