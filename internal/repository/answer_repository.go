package repository

import (
	"context"
	"errors"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/util"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// ListAnswerSetsByUser 最新提交在前
func (r *AnswerRepository) ListAnswerSetsByUser(ctx context.Context, userID uint) ([]model.AnswerSet, error) {
	var sets []model.AnswerSet
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&sets).Error
	return sets, err
}

func (r *AnswerRepository) HasAnswerSet(ctx context.Context, userID, questionnaireID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AnswerSet{}).
		Where("user_id = ? AND questionnaire_id = ?", userID, questionnaireID).
		Count(&count).Error
	return count > 0, err
}

// LatestAnswers 一次查询取回每道题最近一次提交的答案，"最近"以所属 answer set 的创建时间为准
func (r *AnswerRepository) LatestAnswers(ctx context.Context, userID uint, questionIDs []uint) (map[uint]model.Answer, error) {
	latest := make(map[uint]model.Answer, len(questionIDs))
	if len(questionIDs) == 0 {
		return latest, nil
	}

	var answers []model.Answer
	err := r.DB.WithContext(ctx).
		Joins("JOIN answer_sets ON answer_sets.id = answers.answer_set_id AND answer_sets.deleted_at IS NULL").
		Where("answers.user_id = ? AND answers.question_id IN ?", userID, questionIDs).
		Order("answer_sets.created_at desc, answers.id desc").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}

	for _, a := range answers {
		if _, seen := latest[a.QuestionID]; !seen {
			latest[a.QuestionID] = a
		}
	}
	return latest, nil
}

// CreateWithAnswers 在同一事务内写入 answer set 及其全部答案。
// allowResubmit 为 false 时在事务内加锁复查是否已提交过。
func (r *AnswerRepository) CreateWithAnswers(ctx context.Context, set *model.AnswerSet, answers []model.Answer, allowResubmit bool) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !allowResubmit {
			var count int64
			err := tx.Model(&model.AnswerSet{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ? AND questionnaire_id = ?", set.UserID, set.QuestionnaireID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return util.ErrAlreadySubmitted
			}
		}

		if err := tx.Create(set).Error; err != nil {
			return err
		}

		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].AnswerSetID = set.ID
			answers[i].UserID = set.UserID
		}
		return tx.Create(&answers).Error
	})
	// 无记录时 FOR UPDATE 只加间隙锁，同一用户并发首次提交会有一方死锁回滚
	if !allowResubmit && isDeadlock(err) {
		return util.ErrAlreadySubmitted
	}
	return err
}

func isDeadlock(err error) bool {
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDeadlock
}

const mysqlErrDeadlock = 1213

// CountCompletions 每个用户完成的不同问卷数，未提交过的用户计 0
func (r *AnswerRepository) CountCompletions(ctx context.Context) ([]model.QuestionnaireCount, error) {
	var rows []model.QuestionnaireCount
	err := r.DB.WithContext(ctx).Table("users").
		Select("users.id AS user_id, users.email AS email, COUNT(DISTINCT answer_sets.questionnaire_id) AS count").
		Joins("LEFT JOIN answer_sets ON answer_sets.user_id = users.id AND answer_sets.deleted_at IS NULL").
		Where("users.deleted_at IS NULL").
		Group("users.id, users.email").
		Order("users.email asc").
		Scan(&rows).Error
	return rows, err
}
