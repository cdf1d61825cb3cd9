package controller

import (
	"context"
	"errors"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/service"
	"questionnaire_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const MsgFetchData = "Error fetching data"

type AdminService interface {
	FetchAdminCounts(ctx context.Context) ([]model.QuestionnaireCount, error)
	FetchAdminUserDetail(ctx context.Context, userID uint) ([]service.UserAnswerSetDetail, error)
	ExportUserAnswers(ctx context.Context, userID uint) (*service.ExportResult, error)
}

type AdminController struct {
	Service AdminService
}

func NewAdminController(svc AdminService) *AdminController {
	return &AdminController{Service: svc}
}

// CountRow 管理面板中的一行，Expandable 为 true 时可展开查看答案
type CountRow struct {
	UserID     uint   `json:"userId"`
	Email      string `json:"email"`
	Count      int64  `json:"count"`
	Expandable bool   `json:"expandable"`
}

// GetCounts godoc
// @Summary 用户完成问卷数
// @Tags 管理员
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]CountRow}
// @Failure 403 {object} util.Response "无权限"
// @Router /api/admin/counts [get]
func (c *AdminController) GetCounts(ctx *gin.Context) {
	counts, err := c.Service.FetchAdminCounts(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
			return
		}
		util.ViewError(ctx, MsgFetchData, err)
		return
	}

	rows := make([]CountRow, len(counts))
	for i, qc := range counts {
		rows[i] = CountRow{
			UserID:     qc.UserID,
			Email:      qc.Email,
			Count:      qc.Count,
			Expandable: qc.Count > 0,
		}
	}
	util.Success(ctx, rows)
}

func (c *AdminController) userID(ctx *gin.Context) (uint, bool) {
	id, err := util.ParseID(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func (c *AdminController) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	default:
		util.ViewError(ctx, MsgFetchData, err)
	}
}

// GetUserAnswers godoc
// @Summary 用户答案
// @Description 按提交时间倒序列出用户各问卷的答案，选择题答案以逗号连接
// @Tags 管理员
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]service.AnswerRow}
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{userId} [get]
func (c *AdminController) GetUserAnswers(ctx *gin.Context) {
	userID, ok := c.userID(ctx)
	if !ok {
		return
	}

	details, err := c.Service.FetchAdminUserDetail(ctx.Request.Context(), userID)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.Success(ctx, service.AnswerRows(details))
}

// ExportUserAnswers godoc
// @Summary 导出用户答案
// @Description 生成 CSV 并上传到配置的对象存储
// @Tags 管理员
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "用户ID"
// @Success 201 {object} util.Response{data=service.ExportResult}
// @Router /api/admin/users/{userId}/export [post]
func (c *AdminController) ExportUserAnswers(ctx *gin.Context) {
	userID, ok := c.userID(ctx)
	if !ok {
		return
	}

	res, err := c.Service.ExportUserAnswers(ctx.Request.Context(), userID)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}
