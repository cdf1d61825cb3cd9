package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type adminFixture struct {
	svc      *AdminService
	qs       *MockQuestionnaireStore
	answers  *MockAnswerStore
	users    *MockUserStore
	uploader *MockUploader
}

func newAdminFixture() *adminFixture {
	qs := new(MockQuestionnaireStore)
	answers := new(MockAnswerStore)
	users := new(MockUserStore)
	uploader := new(MockUploader)
	questionnaires := NewQuestionnaireService(qs, answers, false)
	return &adminFixture{
		svc:      NewAdminService(questionnaires, answers, users, uploader, "exports"),
		qs:       qs,
		answers:  answers,
		users:    users,
		uploader: uploader,
	}
}

// 用户 7 对问卷 3 提交过一次
func (f *adminFixture) seedUserSeven() {
	user := &model.User{Email: "seven@example.com"}
	user.ID = 7
	f.users.On("FindByID", mock.Anything, uint(7)).Return(user, nil)

	set := model.AnswerSet{QuestionnaireID: 3, UserID: 7}
	set.ID = 1
	set.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.answers.On("ListAnswerSetsByUser", mock.Anything, uint(7)).Return([]model.AnswerSet{set}, nil)

	questionnaire := &model.Questionnaire{Name: "Onboarding"}
	questionnaire.ID = 3
	f.qs.On("FindByID", mock.Anything, uint(3)).Return(questionnaire, nil)
	f.qs.On("ListQuestions", mock.Anything, uint(3)).Return([]model.Question{
		textQuestion(10, "Your name?"),
		mcqQuestion(11, "Languages?", "Go", "Rust", "Zig"),
	}, nil)
	f.answers.On("LatestAnswers", mock.Anything, uint(7), []uint{10, 11}).Return(map[uint]model.Answer{
		10: {QuestionID: 10, Answer: model.TextAnswer("Ada")},
		11: {QuestionID: 11, Answer: model.OptionsAnswer([]string{"Go", "Zig"})},
	}, nil)
}

func TestAdminService_RequiresAdmin(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.FetchAdminCounts(context.Background())
	assert.ErrorIs(t, err, util.ErrNoAuthenticatedUser)

	_, err = f.svc.FetchAdminCounts(userCtx(2, model.RoleUser))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.svc.FetchAdminUserDetail(userCtx(2, model.RoleUser), 7)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	f.answers.AssertNotCalled(t, "CountCompletions", mock.Anything)
}

func TestAdminService_FetchAdminCounts(t *testing.T) {
	f := newAdminFixture()
	f.answers.On("CountCompletions", mock.Anything).Return([]model.QuestionnaireCount{
		{UserID: 1, Email: "a@example.com", Count: 2},
		{UserID: 2, Email: "b@example.com", Count: 0},
	}, nil)

	rows, err := f.svc.FetchAdminCounts(userCtx(1, model.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(0), rows[1].Count)
}

func TestAdminService_FetchAdminUserDetail(t *testing.T) {
	f := newAdminFixture()
	f.seedUserSeven()

	details, err := f.svc.FetchAdminUserDetail(userCtx(1, model.RoleAdmin), 7)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Onboarding", details[0].Detail.Questionnaire.Name)

	rows := AnswerRows(details)
	assert.Equal(t, []AnswerRow{
		{Questionnaire: "Onboarding", Question: "Your name?", Answer: "Ada"},
		{Questionnaire: "Onboarding", Question: "Languages?", Answer: "Go, Zig"},
	}, rows)

	// 管理员查看时不做已答校验
	f.answers.AssertNotCalled(t, "HasAnswerSet", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_FetchAdminUserDetail_UnknownUser(t *testing.T) {
	f := newAdminFixture()
	f.users.On("FindByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.FetchAdminUserDetail(userCtx(1, model.RoleAdmin), 404)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestAdminService_ExportUserAnswers(t *testing.T) {
	f := newAdminFixture()
	f.seedUserSeven()
	f.uploader.On("Upload", mock.Anything,
		mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "exports/user-7/") && strings.HasSuffix(name, ".csv")
		}),
		mock.Anything, util.MimeCSV,
	).Return("/uploads/exports/user-7/x.csv", nil)

	res, err := f.svc.ExportUserAnswers(userCtx(1, model.RoleAdmin), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "/uploads/exports/user-7/x.csv", res.URL)

	records, err := csv.NewReader(bytes.NewReader(f.uploader.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"submitted_at", "questionnaire", "question", "answer"}, records[0])
	assert.Equal(t, []string{"2024-05-01 10:00:00", "Onboarding", "Languages?", "Go, Zig"}, records[2])
}

func TestFormatAnswer(t *testing.T) {
	assert.Equal(t, "", FormatAnswer(textQuestion(1, "q"), nil))
	assert.Equal(t, "", FormatAnswer(textQuestion(1, "q"), &model.Answer{}))
	assert.Equal(t, "a, b", FormatAnswer(mcqQuestion(2, "q"), &model.Answer{Answer: model.OptionsAnswer([]string{"a", "b"})}))
}
