package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ==================== UserService 用户服务 ====================

// UserService 用户服务
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser 创建用户，密码以 bcrypt 哈希保存
func (s *UserService) CreateUser(ctx context.Context, username, password, role string) (*model.SysUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validation("用户名和密码不能为空")
	}
	switch role {
	case model.RoleAdmin, model.RoleOwner, model.RoleUser:
	default:
		return nil, validation("未知角色 %q", role)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: 用户名已存在", ErrInvalidState)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.SysUser{
		Username: username,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// Authenticate 校验用户名密码
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.SysUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResolveSystemPrincipal 解析系统操作人，启动时调用一次
// 用户不存在且提供了密码时自动创建管理员账号
func (s *UserService) ResolveSystemPrincipal(ctx context.Context, username, password string) (model.Principal, error) {
	if strings.TrimSpace(username) == "" {
		return model.Principal{}, fmt.Errorf("%w: 未配置系统用户名", ErrConfiguration)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return model.Principal{}, fmt.Errorf("查询系统用户失败: %w", err)
	}

	if user == nil {
		if password == "" {
			return model.Principal{}, fmt.Errorf("%w: 系统用户 %s 不存在", ErrConfiguration, username)
		}
		user, err = s.CreateUser(ctx, username, password, model.RoleAdmin)
		if err != nil {
			return model.Principal{}, err
		}
	}

	if user.Role != model.RoleAdmin || !user.IsActive {
		return model.Principal{}, fmt.Errorf("%w: 系统用户 %s 不是有效管理员", ErrConfiguration, username)
	}
	return model.Principal{ID: user.ID, Role: user.Role}, nil
}
