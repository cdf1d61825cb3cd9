package service

import (
	"context"
	"errors"
	"fmt"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/util"

	"gorm.io/gorm"
)

// NoRolePath 表示用户没有可用角色，无处可跳转
const NoRolePath = ""

type RoleStore interface {
	FindByUserID(ctx context.Context, userID uint) (*model.UserRoles, error)
}

type RoleService struct {
	Repo RoleStore
}

func NewRoleService(repo RoleStore) *RoleService {
	return &RoleService{Repo: repo}
}

// GetUserRoles 无记录或角色为空时返回空列表
func (s *RoleService) GetUserRoles(ctx context.Context, userID uint) ([]string, error) {
	row, err := s.Repo.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user roles: %w", err)
	}
	if len(row.Roles) == 0 {
		return []string{}, nil
	}
	return []string(row.Roles), nil
}

// GetRedirectPath 优先级 admin > user > 无角色
func GetRedirectPath(roles []string) string {
	switch {
	case model.Roles(roles).Has(model.RoleAdmin):
		return util.PathAdmin
	case model.Roles(roles).Has(model.RoleUser):
		return util.PathQuestionnaire
	default:
		return NoRolePath
	}
}

type NavItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type NavGroup struct {
	Name  string    `json:"name"`
	Items []NavItem `json:"items"`
}

// NavigationGroups 侧边栏导航，按角色开放
func NavigationGroups(roles []string) []NavGroup {
	groups := []NavGroup{}
	if model.Roles(roles).Has(model.RoleAdmin) {
		groups = append(groups, NavGroup{
			Name:  "Admin",
			Items: []NavItem{{Title: "Portal", URL: util.PathAdminPortal}},
		})
	}
	if model.Roles(roles).Has(model.RoleUser) {
		groups = append(groups, NavGroup{
			Name:  "Tasks",
			Items: []NavItem{{Title: "Questionnaires", URL: util.PathQuestionnaireSelect}},
		})
	}
	return groups
}
