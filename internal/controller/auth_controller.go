package controller

import (
	"context"
	"errors"
	"net/http"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/service"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgEmailRequired      = "Email must not be empty."
	MsgPasswordRequired   = "Password must not be empty."
	MsgInvalidCredentials = "Invalid email or password. Please try again."
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*session.Session, error)
}

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// LoginRequest 登录与注册共用
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// credentialErrors 将绑定错误转换为登录表单字段提示
func credentialErrors(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Email":
			fields["email"] = MsgEmailRequired
		case "Password":
			fields["password"] = MsgPasswordRequired
		}
	}
	return fields
}

func bindCredentials(ctx *gin.Context) (*LoginRequest, bool) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fields := credentialErrors(err)
		if len(fields) == 0 {
			util.BadRequest(ctx, err.Error())
		} else {
			util.ErrorWithData(ctx, http.StatusBadRequest, "Invalid form input", fields)
		}
		return nil, false
	}
	return &req, true
}

// Register godoc
// @Summary 注册新用户
// @Description 创建普通用户账号，默认角色为 user
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "邮箱与密码"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	req, ok := bindCredentials(ctx)
	if !ok {
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Error(ctx, http.StatusConflict, "Email already registered")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

// Login godoc
// @Summary 用户登录
// @Description 登录成功返回 token 与按角色决定的跳转路径
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "邮箱与密码"
// @Success 200 {object} util.Response{data=service.LoginResult} "登录成功"
// @Failure 400 {object} util.Response "表单校验失败"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Failure 403 {object} util.Response "用户没有可用角色"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	req, ok := bindCredentials(ctx)
	if !ok {
		return
	}

	res, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		util.Success(ctx, res)
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, util.ErrNoValidRole):
		util.Error(ctx, http.StatusForbidden, util.ErrNoValidRole.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// Logout godoc
// @Summary 退出登录
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"redirect": util.PathHome})
}

// GetSession godoc
// @Summary 当前会话
// @Description 侧边栏所需的邮箱、角色与导航分组
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/session [get]
func (c *AuthController) GetSession(ctx *gin.Context) {
	view, err := service.CurrentSessionView(ctx.Request.Context())
	if err != nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, view)
}

// RefreshSession godoc
// @Summary 刷新会话
// @Description 重新读取角色并更新会话
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 401 {object} util.Response "会话已过期"
// @Router /api/session/refresh [post]
func (c *AuthController) RefreshSession(ctx *gin.Context) {
	sess, err := c.AuthService.Refresh(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, util.ErrSessionExpired) || errors.Is(err, util.ErrNoAuthenticatedUser) {
			util.Error(ctx, http.StatusUnauthorized, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	view, _ := service.CurrentSessionView(session.WithSession(ctx.Request.Context(), sess))
	util.Success(ctx, view)
}
