package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ==================== SessionReaperTask 空闲会话回收 ====================

// SessionCloser 关闭空闲餐桌会话
type SessionCloser interface {
	CloseIdleSessions(ctx context.Context) (int64, error)
}

// SessionReaperTask 定时关闭长时间无活动的餐桌会话
type SessionReaperTask struct {
	closer  SessionCloser
	spec    string
	timeout time.Duration
	cron    *cron.Cron
}

// NewSessionReaperTask 创建会话回收任务
// spec 为带秒的 cron 表达式
func NewSessionReaperTask(closer SessionCloser, spec string) *SessionReaperTask {
	return &SessionReaperTask{
		closer:  closer,
		spec:    spec,
		timeout: time.Minute,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *SessionReaperTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	t.cron.Start()
	zap.L().Info("[Task] session reaper started", zap.String("spec", t.spec))
	return nil
}

// Stop 停止并等待执行中的任务结束
func (t *SessionReaperTask) Stop() {
	<-t.cron.Stop().Done()
}

// RunOnce 执行一次回收
func (t *SessionReaperTask) RunOnce(ctx context.Context) int64 {
	closed, err := t.closer.CloseIdleSessions(ctx)
	if err != nil {
		zap.L().Error("[Task] session reaper failed", zap.Error(err))
		return 0
	}
	return closed
}
