package service

import (
	"errors"
	"fmt"
)

// ==================== 业务错误 ====================
// 控制器层通过 errors.Is 映射 HTTP 状态码

var (
	ErrValidation        = errors.New("参数错误")
	ErrNotFound          = errors.New("资源不存在")
	ErrInvalidState      = errors.New("数据已失效")
	ErrInvalidTransition = errors.New("状态流转不合法")
	ErrForbidden         = errors.New("无权限")
	ErrConfiguration     = errors.New("系统配置错误")
)

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
}

func validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func isForbiddenOrMissing(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound)
}

// ErrInvalidCredentials 登录失败
var ErrInvalidCredentials = errors.New("用户名或密码错误")
