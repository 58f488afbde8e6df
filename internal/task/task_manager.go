package task

import (
	"time"

	"go.uber.org/zap"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务的启停
type TaskManager struct {
	sessionTask *SessionReaperTask
	sweepTask   *LimiterSweepTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Sessions SessionCloser
	Limiter  Sweeper
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	SessionEnabled  bool
	SessionReapSpec string

	SweepEnabled bool
	SweepMaxAge  time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SessionEnabled:  true,
		SessionReapSpec: "0 */10 * * * *",
		SweepEnabled:    true,
		SweepMaxAge:     10 * time.Minute,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}
	if cfg.SessionEnabled && deps.Sessions != nil {
		tm.sessionTask = NewSessionReaperTask(deps.Sessions, cfg.SessionReapSpec)
	}
	if cfg.SweepEnabled && deps.Limiter != nil {
		tm.sweepTask = NewLimiterSweepTask(deps.Limiter, cfg.SweepMaxAge)
	}
	return tm
}

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	if tm.sessionTask != nil {
		if err := tm.sessionTask.Start(); err != nil {
			return err
		}
	}
	if tm.sweepTask != nil {
		if err := tm.sweepTask.Start(); err != nil {
			return err
		}
	}
	zap.L().Info("[TaskManager] background tasks started", zap.Any("status", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.sessionTask != nil {
		tm.sessionTask.Stop()
	}
	if tm.sweepTask != nil {
		tm.sweepTask.Stop()
	}
	zap.L().Info("[TaskManager] background tasks stopped")
}

// Status 任务启用状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"session_reaper": tm.sessionTask != nil,
		"limiter_sweep":  tm.sweepTask != nil,
	}
}
