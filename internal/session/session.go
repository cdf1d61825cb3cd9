// Package session 保存已登录用户的会话：登录时创建，每次请求由鉴权中间件
// 解析并放入 context，角色变化时刷新，登出时清除。
package session

import (
	"context"
)

type Session struct {
	ID     string   `json:"id"`
	UserID uint     `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 未登录时返回 nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
