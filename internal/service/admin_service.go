package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"
	"questionnaire_backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Uploader 导出文件写入对象存储
type Uploader interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

type AdminService struct {
	Questionnaires *QuestionnaireService
	Answers        AnswerStore
	Users          UserLookup
	Storage        Uploader
	ExportPrefix   string
}

func NewAdminService(questionnaires *QuestionnaireService, answers AnswerStore, users UserLookup, storage Uploader, exportPrefix string) *AdminService {
	return &AdminService{
		Questionnaires: questionnaires,
		Answers:        answers,
		Users:          users,
		Storage:        storage,
		ExportPrefix:   exportPrefix,
	}
}

func requireAdmin(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if sess == nil {
		return util.ErrNoAuthenticatedUser
	}
	if !sess.HasRole(model.RoleAdmin) {
		return util.ErrPermissionDenied
	}
	return nil
}

func (s *AdminService) FetchAdminCounts(ctx context.Context) ([]model.QuestionnaireCount, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	rows, err := s.Answers.CountCompletions(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching questionnaire counts: %w", err)
	}
	if rows == nil {
		rows = []model.QuestionnaireCount{}
	}
	return rows, nil
}

// UserAnswerSetDetail 一次提交及其问卷详情
type UserAnswerSetDetail struct {
	AnswerSet model.AnswerSet      `json:"answerSet"`
	Detail    *QuestionnaireDetail `json:"detail"`
}

// FetchAdminUserDetail 用户的全部提交，最新在前。
// 每条提交附带的是该用户每题最近一次答案，而非本次提交的答案。
func (s *AdminService) FetchAdminUserDetail(ctx context.Context, userID uint) ([]UserAnswerSetDetail, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	sets, err := s.Answers.ListAnswerSetsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching answer sets: %w", err)
	}

	details := make([]UserAnswerSetDetail, 0, len(sets))
	for _, set := range sets {
		detail, err := s.Questionnaires.FetchQuestionnaireDetail(ctx, set.QuestionnaireID, userID, false)
		if err != nil {
			return nil, err
		}
		details = append(details, UserAnswerSetDetail{AnswerSet: set, Detail: detail})
	}
	return details, nil
}

// AnswerRow 管理端用户答案表的一行
type AnswerRow struct {
	Questionnaire string `json:"questionnaire"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

// FormatAnswer 文本题原样输出，选择题以 ", " 连接
func FormatAnswer(q model.Question, a *model.Answer) string {
	if a == nil {
		return ""
	}
	switch q.Question.Type {
	case model.QuestionTypeText:
		if a.Answer.Text == nil {
			return ""
		}
		return *a.Answer.Text
	case model.QuestionTypeMCQ:
		return strings.Join(a.Answer.Options, ", ")
	}
	return ""
}

func AnswerRows(details []UserAnswerSetDetail) []AnswerRow {
	rows := []AnswerRow{}
	for _, d := range details {
		if d.Detail == nil {
			continue
		}
		for i, q := range d.Detail.Questions {
			rows = append(rows, AnswerRow{
				Questionnaire: d.Detail.Questionnaire.Name,
				Question:      q.Question.Question,
				Answer:        FormatAnswer(q, d.Detail.LastAnswers[i]),
			})
		}
	}
	return rows
}

type ExportResult struct {
	URL        string    `json:"url"`
	ObjectName string    `json:"objectName"`
	Rows       int       `json:"rows"`
	ExportedAt time.Time `json:"exportedAt"`
}

// ExportUserAnswers 将用户答案表导出为 CSV 并上传
func (s *AdminService) ExportUserAnswers(ctx context.Context, userID uint) (*ExportResult, error) {
	details, err := s.FetchAdminUserDetail(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := AnswerRows(details)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"submitted_at", "questionnaire", "question", "answer"})
	for _, d := range details {
		if d.Detail == nil {
			continue
		}
		submitted := d.AnswerSet.CreatedAt.Format(util.TimeFormat)
		for i, q := range d.Detail.Questions {
			w.Write([]string{
				submitted,
				d.Detail.Questionnaire.Name,
				q.Question.Question,
				FormatAnswer(q, d.Detail.LastAnswers[i]),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error writing export: %w", err)
	}

	now := time.Now()
	objectName := path.Join(s.ExportPrefix, fmt.Sprintf("user-%d", userID),
		fmt.Sprintf("%s-%s.csv", now.Format("20060102150405"), uuid.New().String()))

	url, err := s.Storage.Upload(ctx, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), util.MimeCSV)
	if err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	logger.Log.Info("answers exported",
		zap.Uint("user_id", userID),
		zap.String("object", objectName),
		zap.Int("rows", len(rows)),
	)
	return &ExportResult{URL: url, ObjectName: objectName, Rows: len(rows), ExportedAt: now}, nil
}
