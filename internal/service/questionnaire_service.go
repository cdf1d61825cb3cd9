package service

import (
	"context"
	"errors"
	"fmt"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"
	"questionnaire_backend/pkg/logger"
	"questionnaire_backend/pkg/monitoring"
	"questionnaire_backend/pkg/tracing"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionnaireStore interface {
	List(ctx context.Context) ([]model.Questionnaire, error)
	FindByID(ctx context.Context, id uint) (*model.Questionnaire, error)
	ListQuestions(ctx context.Context, questionnaireID uint) ([]model.Question, error)
}

type AnswerStore interface {
	ListAnswerSetsByUser(ctx context.Context, userID uint) ([]model.AnswerSet, error)
	HasAnswerSet(ctx context.Context, userID, questionnaireID uint) (bool, error)
	LatestAnswers(ctx context.Context, userID uint, questionIDs []uint) (map[uint]model.Answer, error)
	CreateWithAnswers(ctx context.Context, set *model.AnswerSet, answers []model.Answer, allowResubmit bool) error
	CountCompletions(ctx context.Context) ([]model.QuestionnaireCount, error)
}

type QuestionnaireService struct {
	Questionnaires QuestionnaireStore
	Answers        AnswerStore

	allowResubmit atomic.Bool
}

func NewQuestionnaireService(questionnaires QuestionnaireStore, answers AnswerStore, allowResubmit bool) *QuestionnaireService {
	s := &QuestionnaireService{Questionnaires: questionnaires, Answers: answers}
	s.allowResubmit.Store(allowResubmit)
	return s
}

// SetAllowResubmit 配置热加载时切换重复提交策略
func (s *QuestionnaireService) SetAllowResubmit(allow bool) {
	s.allowResubmit.Store(allow)
}

func (s *QuestionnaireService) AllowResubmit() bool {
	return s.allowResubmit.Load()
}

func (s *QuestionnaireService) ListQuestionnaires(ctx context.Context) ([]model.Questionnaire, error) {
	qs, err := s.Questionnaires.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching questionnaires: %w", err)
	}
	return qs, nil
}

type UserQuestionnaires struct {
	Questionnaires []model.Questionnaire `json:"questionnaires"`
	AnswerSets     []model.AnswerSet     `json:"answerSets"`
}

// ListUserQuestionnairesAndAnswerSets 两个列表互不关联，由调用方按问卷 ID 对应
func (s *QuestionnaireService) ListUserQuestionnairesAndAnswerSets(ctx context.Context) (*UserQuestionnaires, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, util.ErrNoAuthenticatedUser
	}

	qs, err := s.Questionnaires.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching questionnaires: %w", err)
	}

	sets, err := s.Answers.ListAnswerSetsByUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("error fetching answer sets: %w", err)
	}

	return &UserQuestionnaires{Questionnaires: qs, AnswerSets: sets}, nil
}

type SelectorItem struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Completed       bool       `json:"completed"`
	LastSubmittedAt *time.Time `json:"lastSubmittedAt,omitempty"`
}

// Selector 问卷列表及当前用户的完成状态
func (s *QuestionnaireService) Selector(ctx context.Context) ([]SelectorItem, error) {
	data, err := s.ListUserQuestionnairesAndAnswerSets(ctx)
	if err != nil {
		return nil, err
	}

	last := make(map[uint]time.Time, len(data.AnswerSets))
	for _, set := range data.AnswerSets {
		if t, ok := last[set.QuestionnaireID]; !ok || set.CreatedAt.After(t) {
			last[set.QuestionnaireID] = set.CreatedAt
		}
	}

	items := make([]SelectorItem, len(data.Questionnaires))
	for i, q := range data.Questionnaires {
		items[i] = SelectorItem{ID: q.ID, Name: q.Name}
		if t, ok := last[q.ID]; ok {
			t := t
			items[i].Completed = true
			items[i].LastSubmittedAt = &t
		}
	}
	return items, nil
}

type QuestionnaireDetail struct {
	Questionnaire model.Questionnaire `json:"questionnaire"`
	Questions     []model.Question    `json:"questions"`
	// 与 Questions 一一对应，未作答为 nil
	LastAnswers []*model.Answer `json:"lastAnswers"`
}

// FetchQuestionnaireDetail 取问卷、有序题目及 userID 每题最近一次答案。
// skipIfAnswered 为 true 且该用户已提交过此问卷时返回 ErrAlreadySubmitted。
func (s *QuestionnaireService) FetchQuestionnaireDetail(ctx context.Context, id, userID uint, skipIfAnswered bool) (*QuestionnaireDetail, error) {
	if session.FromContext(ctx) == nil {
		return nil, util.ErrNoAuthenticatedUser
	}

	ctx, span := tracing.Tracer.Start(ctx, "QuestionnaireService.FetchQuestionnaireDetail")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("questionnaire.id", int64(id)),
		attribute.Int64("user.id", int64(userID)),
	)

	if skipIfAnswered {
		answered, err := s.Answers.HasAnswerSet(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("error fetching answer sets: %w", err)
		}
		if answered {
			return nil, util.ErrAlreadySubmitted
		}
	}

	questionnaire, err := s.Questionnaires.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching questionnaire: %w", err)
	}

	questions, err := s.Questionnaires.ListQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		if !q.Question.Type.Valid() {
			return nil, fmt.Errorf("question %d: %w %q", q.ID, util.ErrUnknownQuestionType, q.Question.Type)
		}
		ids[i] = q.ID
	}

	latest, err := s.Answers.LatestAnswers(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("error fetching answer: %w", err)
	}
	monitoring.AnswerLookupSize.Observe(float64(len(ids)))

	lastAnswers := make([]*model.Answer, len(questions))
	for i, q := range questions {
		if a, ok := latest[q.ID]; ok {
			a := a
			lastAnswers[i] = &a
		}
	}

	return &QuestionnaireDetail{
		Questionnaire: *questionnaire,
		Questions:     questions,
		LastAnswers:   lastAnswers,
	}, nil
}

// SubmitAnswers 为当前用户写入一次提交，answer set 与答案在同一事务中落库
func (s *QuestionnaireService) SubmitAnswers(ctx context.Context, questionnaireID uint, inputs []model.AnswerInput) (*model.AnswerSet, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, util.ErrNoAuthenticatedUser
	}

	ctx, span := tracing.Tracer.Start(ctx, "QuestionnaireService.SubmitAnswers")
	defer span.End()

	set := &model.AnswerSet{
		QuestionnaireID: questionnaireID,
		UserID:          sess.UserID,
	}
	answers := make([]model.Answer, len(inputs))
	for i, in := range inputs {
		answers[i] = model.Answer{
			UserID:     sess.UserID,
			QuestionID: in.QuestionID,
			Answer:     in.Answer,
		}
	}

	if err := s.Answers.CreateWithAnswers(ctx, set, answers, s.AllowResubmit()); err != nil {
		if errors.Is(err, util.ErrAlreadySubmitted) {
			monitoring.SubmissionCounter.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		monitoring.SubmissionCounter.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("error submitting answers: %w", err)
	}

	monitoring.SubmissionCounter.WithLabelValues("ok").Inc()
	logger.Log.Info("answers submitted",
		zap.Uint("user_id", sess.UserID),
		zap.Uint("questionnaire_id", questionnaireID),
		zap.Uint("answer_set_id", set.ID),
		zap.Int("answers", len(answers)),
	)
	return set, nil
}
