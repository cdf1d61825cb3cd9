package repository

import (
	"context"
	"questionnaire_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionnaireRepository struct {
	DB *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{DB: db}
}

func (r *QuestionnaireRepository) List(ctx context.Context) ([]model.Questionnaire, error) {
	var qs []model.Questionnaire
	err := r.DB.WithContext(ctx).Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionnaireRepository) FindByID(ctx context.Context, id uint) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.DB.WithContext(ctx).First(&q, id).Error
	return &q, err
}

// ListQuestions 按关联表 priority 升序返回问卷题目
func (r *QuestionnaireRepository) ListQuestions(ctx context.Context, questionnaireID uint) ([]model.Question, error) {
	var junctions []model.QuestionnaireJunction
	err := r.DB.WithContext(ctx).
		Preload("Question").
		Where("questionnaire_id = ?", questionnaireID).
		Order("priority asc, id asc").
		Find(&junctions).Error
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(junctions))
	for _, j := range junctions {
		// 题目被软删除时 Preload 结果为空
		if j.Question == nil {
			continue
		}
		questions = append(questions, *j.Question)
	}
	return questions, nil
}
