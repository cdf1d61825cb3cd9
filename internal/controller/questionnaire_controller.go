package controller

import (
	"context"
	"errors"
	"net/http"
	"questionnaire_backend/internal/form"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/service"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	MsgInvalidQuestionnaireID = "Invalid questionnaire ID"
	MsgLoadQuestionnaire      = "Failed to load questionnaire data"
	MsgFetchQuestionnaires    = "Error fetching questionnaires"
	MsgSubmitAnswers          = "Failed to submit answers"
)

type QuestionnaireService interface {
	ListQuestionnaires(ctx context.Context) ([]model.Questionnaire, error)
	Selector(ctx context.Context) ([]service.SelectorItem, error)
	FetchQuestionnaireDetail(ctx context.Context, id, userID uint, skipIfAnswered bool) (*service.QuestionnaireDetail, error)
	SubmitAnswers(ctx context.Context, questionnaireID uint, inputs []model.AnswerInput) (*model.AnswerSet, error)
	AllowResubmit() bool
}

type QuestionnaireController struct {
	Service QuestionnaireService
}

func NewQuestionnaireController(svc QuestionnaireService) *QuestionnaireController {
	return &QuestionnaireController{Service: svc}
}

// FormView 问卷表单页面数据
// swagger:model FormView
type FormView struct {
	ID     uint         `json:"id"`
	Name   string       `json:"name"`
	Fields []form.Field `json:"fields"`
}

// ListQuestionnaires godoc
// @Summary 问卷列表
// @Tags 问卷
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Questionnaire}
// @Router /api/questionnaires [get]
func (c *QuestionnaireController) ListQuestionnaires(ctx *gin.Context) {
	qs, err := c.Service.ListQuestionnaires(ctx.Request.Context())
	if err != nil {
		util.ViewError(ctx, MsgFetchQuestionnaires, err)
		return
	}
	util.Success(ctx, qs)
}

// Selector godoc
// @Summary 问卷选择页
// @Description 问卷列表及当前用户是否已完成
// @Tags 问卷
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.SelectorItem}
// @Router /api/questionnaire-selector [get]
func (c *QuestionnaireController) Selector(ctx *gin.Context) {
	items, err := c.Service.Selector(ctx.Request.Context())
	if err != nil {
		util.ViewError(ctx, MsgFetchQuestionnaires, err)
		return
	}
	util.Success(ctx, items)
}

// loadForm 加载问卷详情与 schema，出错时已写响应
func (c *QuestionnaireController) loadForm(ctx *gin.Context, skipIfAnswered bool) (*service.QuestionnaireDetail, *form.Schema, bool) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.Inline(ctx, MsgInvalidQuestionnaireID)
		return nil, nil, false
	}

	reqCtx := ctx.Request.Context()
	sess := session.FromContext(reqCtx)
	if sess == nil {
		util.Unauthorized(ctx)
		return nil, nil, false
	}

	detail, err := c.Service.FetchQuestionnaireDetail(reqCtx, id, sess.UserID, skipIfAnswered)
	switch {
	case errors.Is(err, util.ErrQuestionnaireNotFound):
		util.NotFound(ctx)
		return nil, nil, false
	case errors.Is(err, util.ErrAlreadySubmitted):
		util.ErrorWithData(ctx, http.StatusConflict, "Questionnaire already submitted",
			gin.H{"redirect": util.PathQuestionnaireSelect})
		return nil, nil, false
	case err != nil:
		util.ViewError(ctx, MsgLoadQuestionnaire, err)
		return nil, nil, false
	}

	schema, err := form.BuildSchema(detail.Questions)
	if err != nil {
		util.ViewError(ctx, MsgLoadQuestionnaire, err)
		return nil, nil, false
	}
	return detail, schema, true
}

// GetForm godoc
// @Summary 问卷表单
// @Description 题目按优先级排列，默认值为用户上一次的答案。不允许重复提交时，已提交过的用户返回 409
// @Tags 问卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=FormView}
// @Failure 404 {object} util.Response "问卷不存在"
// @Failure 409 {object} util.Response "已提交过"
// @Router /api/questionnaire/{id} [get]
func (c *QuestionnaireController) GetForm(ctx *gin.Context) {
	// 允许重复提交时照常展示表单，并用上一次的答案预填
	detail, _, ok := c.loadForm(ctx, !c.Service.AllowResubmit())
	if !ok {
		return
	}

	defaults, err := form.DefaultValues(detail.Questions, detail.LastAnswers)
	if err != nil {
		util.ViewError(ctx, MsgLoadQuestionnaire, err)
		return
	}
	fields, err := form.Fields(detail.Questions, defaults)
	if err != nil {
		util.ViewError(ctx, MsgLoadQuestionnaire, err)
		return
	}

	util.Success(ctx, FormView{
		ID:     detail.Questionnaire.ID,
		Name:   detail.Questionnaire.Name,
		Fields: fields,
	})
}

// SubmitForm godoc
// @Summary 提交问卷
// @Description 请求体为题目ID到答案的映射，文本题为字符串，选择题为字符串数组
// @Tags 问卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body object true "答案"
// @Success 201 {object} util.Response{data=object} "提交成功"
// @Failure 400 {object} util.Response "字段校验失败"
// @Failure 409 {object} util.Response "已提交过"
// @Router /api/questionnaire/{id} [post]
func (c *QuestionnaireController) SubmitForm(ctx *gin.Context) {
	detail, schema, ok := c.loadForm(ctx, false)
	if !ok {
		return
	}

	var values form.Values
	if err := ctx.ShouldBindJSON(&values); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if fieldErrs := schema.Validate(values); len(fieldErrs) > 0 {
		util.ErrorWithData(ctx, http.StatusBadRequest, "Invalid form input", fieldErrs)
		return
	}

	answers, err := form.ToAnswers(detail.Questions, values)
	if err != nil {
		util.ViewError(ctx, MsgSubmitAnswers, err)
		return
	}

	set, err := c.Service.SubmitAnswers(ctx.Request.Context(), detail.Questionnaire.ID, answers)
	if err != nil {
		if errors.Is(err, util.ErrAlreadySubmitted) {
			util.ErrorWithData(ctx, http.StatusConflict, "Questionnaire already submitted",
				gin.H{"redirect": util.PathQuestionnaireSelect})
			return
		}
		util.ViewError(ctx, MsgSubmitAnswers, err)
		return
	}

	util.Created(ctx, gin.H{
		"answerSetId": set.ID,
		"redirect":    util.PathQuestionnaireSelect,
	})
}
