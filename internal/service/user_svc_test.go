package service

import (
	"errors"
	"testing"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "chef", "secret", model.RoleOwner)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.Password == "secret" {
		t.Error("密码应以哈希保存")
	}

	if _, err := svc.CreateUser(ctx, "chef", "other", model.RoleOwner); !errors.Is(err, ErrInvalidState) {
		t.Errorf("重复用户名: error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.CreateUser(ctx, "x", "y", "root"); !errors.Is(err, ErrValidation) {
		t.Errorf("未知角色: error = %v, want ErrValidation", err)
	}

	got, err := svc.Authenticate(ctx, "chef", "secret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Authenticate() ID = %s, want %s", got.ID, user.ID)
	}
	if _, err := svc.Authenticate(ctx, "chef", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码: error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("不存在的用户: error = %v, want ErrInvalidCredentials", err)
	}
}

func TestResolveSystemPrincipal(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := t.Context()

	if _, err := svc.ResolveSystemPrincipal(ctx, "", "pw"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("空用户名: error = %v, want ErrConfiguration", err)
	}
	if _, err := svc.ResolveSystemPrincipal(ctx, "system", ""); !errors.Is(err, ErrConfiguration) {
		t.Errorf("缺少密码: error = %v, want ErrConfiguration", err)
	}

	p, err := svc.ResolveSystemPrincipal(ctx, "system", "pw")
	if err != nil {
		t.Fatalf("ResolveSystemPrincipal() error = %v", err)
	}
	if p.IsZero() || !p.IsAdmin() {
		t.Errorf("principal = %+v", p)
	}

	// 已存在时直接复用
	again, err := svc.ResolveSystemPrincipal(ctx, "system", "")
	if err != nil {
		t.Fatalf("second ResolveSystemPrincipal() error = %v", err)
	}
	if again.ID != p.ID {
		t.Errorf("ID = %s, want %s", again.ID, p.ID)
	}

	if _, err := svc.CreateUser(ctx, "cashier", "pw", model.RoleUser); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := svc.ResolveSystemPrincipal(ctx, "cashier", ""); !errors.Is(err, ErrConfiguration) {
		t.Errorf("非管理员: error = %v, want ErrConfiguration", err)
	}
}
