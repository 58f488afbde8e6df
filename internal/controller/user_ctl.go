package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcourt_dev_v1_202610/internal/api/dto"
	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/service"
)

// UserController 登录与用户管理
type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Login POST /api/auth/login
// @Summary 登录
// @Tags 用户
// @Param body body dto.LoginRequest true "用户名密码"
// @Router /auth/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.userService.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	token, expiresAt, err := middleware.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toUserInfo(user),
	})
}

// CreateUser POST /api/users (管理员)
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusCreated, toUserInfo(user))
}

func toUserInfo(user *model.SysUser) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
