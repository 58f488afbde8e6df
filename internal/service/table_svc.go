package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ==================== TableService 餐桌会话 ====================

// TableService 餐桌与会话管理
type TableService struct {
	tableRepo   repository.TableRepository
	sessionRepo repository.TableSessionRepository
	idleTimeout time.Duration
	now         func() time.Time
}

// NewTableService 创建餐桌服务
func NewTableService(
	tableRepo repository.TableRepository,
	sessionRepo repository.TableSessionRepository,
	idleTimeout time.Duration,
) *TableService {
	return &TableService{
		tableRepo:   tableRepo,
		sessionRepo: sessionRepo,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// CreateTable 登记餐桌 (管理员)
func (s *TableService) CreateTable(ctx context.Context, p model.Principal, number int, label string) (*model.Table, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: 仅管理员可登记餐桌", ErrForbidden)
	}
	if number <= 0 {
		return nil, validation("桌号必须大于 0")
	}

	table := &model.Table{Number: number, Label: label}
	if err := s.tableRepo.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("创建餐桌失败: %w", err)
	}
	return table, nil
}

// CloseSession 清台 (管理员)
func (s *TableService) CloseSession(ctx context.Context, p model.Principal, tableID string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("%w: 仅管理员可清台", ErrForbidden)
	}
	table, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return fmt.Errorf("查询餐桌失败: %w", err)
	}
	if table == nil {
		return notFound("餐桌", tableID)
	}

	rows, err := s.sessionRepo.CloseByTable(ctx, table.ID, s.now())
	if err != nil {
		return fmt.Errorf("清台失败: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: 餐桌没有进行中的会话", ErrInvalidState)
	}
	return nil
}

// CloseIdleSessions 关闭超时未活动的会话，由定时任务调用
func (s *TableService) CloseIdleSessions(ctx context.Context) (int64, error) {
	now := s.now()
	rows, err := s.sessionRepo.CloseIdle(ctx, now.Add(-s.idleTimeout), now)
	if err != nil {
		return 0, fmt.Errorf("关闭空闲会话失败: %w", err)
	}
	if rows > 0 {
		zap.L().Info("idle table sessions closed", zap.Int64("count", rows))
	}
	return rows, nil
}
