package service

import (
	"context"
	"errors"
	"fmt"
	"questionnaire_backend/internal/config"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"
	"questionnaire_backend/pkg/logger"
	"questionnaire_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserStore interface {
	CreateWithRoles(ctx context.Context, user *model.User, roles model.Roles) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	Users    UserStore
	Roles    *RoleService
	Sessions session.Store
	JWT      config.JWTConfig
}

func NewAuthService(users UserStore, roles *RoleService, sessions session.Store, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		Users:    users,
		Roles:    roles,
		Sessions: sessions,
		JWT:      jwtCfg,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, Password: string(hashedPassword)}
	if err := s.Users.CreateWithRoles(ctx, user, model.Roles{model.RoleUser}); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

type LoginResult struct {
	Token        string   `json:"token"`
	RedirectPath string   `json:"redirectPath"`
	Roles        []string `json:"roles"`
}

// Login 校验密码、加载角色并创建会话；没有可用角色的用户不创建会话
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		monitoring.LoginCounter.WithLabelValues("invalid").Inc()
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		monitoring.LoginCounter.WithLabelValues("invalid").Inc()
		return nil, util.ErrInvalidCredentials
	}

	roles, err := s.Roles.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	redirect := GetRedirectPath(roles)
	if redirect == NoRolePath {
		monitoring.LoginCounter.WithLabelValues("no_role").Inc()
		return nil, util.ErrNoValidRole
	}

	sess := &session.Session{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Email:  user.Email,
		Roles:  roles,
	}
	if err := s.Sessions.Save(ctx, sess, s.JWT.ExpireTime); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}

	token, err := util.GenerateJWT(sess.ID, user.ID, user.Email, s.JWT.Secret, s.JWT.ExpireTime)
	if err != nil {
		s.Sessions.Delete(ctx, sess.ID)
		return nil, err
	}

	monitoring.LoginCounter.WithLabelValues("ok").Inc()
	logger.Log.Info("user logged in", zap.Uint("user_id", user.ID), zap.Strings("roles", roles))
	return &LoginResult{Token: token, RedirectPath: redirect, Roles: roles}, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if sess == nil {
		return util.ErrNoAuthenticatedUser
	}
	return s.Sessions.Delete(ctx, sess.ID)
}

// Refresh 重新读取角色并覆盖已保存的会话
func (s *AuthService) Refresh(ctx context.Context) (*session.Session, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, util.ErrNoAuthenticatedUser
	}

	roles, err := s.Roles.GetUserRoles(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	updated := *sess
	updated.Roles = roles
	if err := s.Sessions.Refresh(ctx, &updated); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, util.ErrSessionExpired
		}
		return nil, err
	}
	return &updated, nil
}

// SessionView 侧边栏所需的会话信息
type SessionView struct {
	Email  string     `json:"email"`
	Roles  []string   `json:"roles"`
	Groups []NavGroup `json:"groups"`
}

func CurrentSessionView(ctx context.Context) (*SessionView, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, util.ErrNoAuthenticatedUser
	}
	return &SessionView{
		Email:  sess.Email,
		Roles:  sess.Roles,
		Groups: NavigationGroups(sess.Roles),
	}, nil
}
