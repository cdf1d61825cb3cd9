package service

import (
	"context"
	"io"

	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/session"

	"github.com/stretchr/testify/mock"
)

type MockQuestionnaireStore struct {
	mock.Mock
}

func (m *MockQuestionnaireStore) List(ctx context.Context) ([]model.Questionnaire, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Questionnaire), args.Error(1)
}

func (m *MockQuestionnaireStore) FindByID(ctx context.Context, id uint) (*model.Questionnaire, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Questionnaire), args.Error(1)
}

func (m *MockQuestionnaireStore) ListQuestions(ctx context.Context, questionnaireID uint) ([]model.Question, error) {
	args := m.Called(ctx, questionnaireID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Question), args.Error(1)
}

type MockAnswerStore struct {
	mock.Mock
}

func (m *MockAnswerStore) ListAnswerSetsByUser(ctx context.Context, userID uint) ([]model.AnswerSet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AnswerSet), args.Error(1)
}

func (m *MockAnswerStore) HasAnswerSet(ctx context.Context, userID, questionnaireID uint) (bool, error) {
	args := m.Called(ctx, userID, questionnaireID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnswerStore) LatestAnswers(ctx context.Context, userID uint, questionIDs []uint) (map[uint]model.Answer, error) {
	args := m.Called(ctx, userID, questionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]model.Answer), args.Error(1)
}

func (m *MockAnswerStore) CreateWithAnswers(ctx context.Context, set *model.AnswerSet, answers []model.Answer, allowResubmit bool) error {
	args := m.Called(ctx, set, answers, allowResubmit)
	return args.Error(0)
}

func (m *MockAnswerStore) CountCompletions(ctx context.Context) ([]model.QuestionnaireCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuestionnaireCount), args.Error(1)
}

type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) FindByUserID(ctx context.Context, userID uint) (*model.UserRoles, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserRoles), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateWithRoles(ctx context.Context, user *model.User, roles model.Roles) error {
	args := m.Called(ctx, user, roles)
	return args.Error(0)
}

func (m *MockUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockUploader struct {
	mock.Mock
	body []byte
}

func (m *MockUploader) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	m.body, _ = io.ReadAll(reader)
	args := m.Called(ctx, objectName, size, contentType)
	return args.String(0), args.Error(1)
}

func userCtx(id uint, roles ...string) context.Context {
	return session.WithSession(context.Background(), &session.Session{
		ID:     "sess-test",
		UserID: id,
		Email:  "user@example.com",
		Roles:  roles,
	})
}

func textQuestion(id uint, prompt string) model.Question {
	q := model.Question{Question: model.QuestionBody{Type: model.QuestionTypeText, Question: prompt}}
	q.ID = id
	return q
}

func mcqQuestion(id uint, prompt string, options ...string) model.Question {
	q := model.Question{Question: model.QuestionBody{Type: model.QuestionTypeMCQ, Question: prompt, Options: options}}
	q.ID = id
	return q
}
