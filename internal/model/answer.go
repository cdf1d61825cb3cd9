package model

import "database/sql/driver"

// AnswerSet 一次提交事件
// swagger:model AnswerSet
type AnswerSet struct {
	BaseModel
	QuestionnaireID uint `gorm:"index:idx_answer_sets_user_questionnaire,priority:2;type:bigint unsigned" json:"questionnaireId"`
	UserID          uint `gorm:"index:idx_answer_sets_user_questionnaire,priority:1;type:bigint unsigned" json:"userId"`
}

func (AnswerSet) TableName() string {
	return "answer_sets"
}

// AnswerPayload 文本题只填 Text，选择题只填 Options
type AnswerPayload struct {
	Text    *string  `json:"text"`
	Options []string `json:"options"`
}

func (p AnswerPayload) Value() (driver.Value, error) {
	return marshalJSON(p)
}

func (p *AnswerPayload) Scan(value interface{}) error {
	return scanJSON(value, p)
}

func TextAnswer(text string) AnswerPayload {
	return AnswerPayload{Text: &text}
}

func OptionsAnswer(options []string) AnswerPayload {
	if options == nil {
		options = []string{}
	}
	return AnswerPayload{Options: options}
}

// swagger:model Answer
type Answer struct {
	BaseModel
	UserID      uint          `gorm:"index:idx_answers_user_question,priority:1;type:bigint unsigned" json:"userId"`
	QuestionID  uint          `gorm:"index:idx_answers_user_question,priority:2;type:bigint unsigned" json:"questionId"`
	AnswerSetID uint          `gorm:"index;type:bigint unsigned" json:"answerSetId"`
	Answer      AnswerPayload `gorm:"type:json;not null" json:"answer"`
}

func (Answer) TableName() string {
	return "answers"
}

// AnswerInput 提交时的单题答案
type AnswerInput struct {
	QuestionID uint          `json:"questionId" binding:"required"`
	Answer     AnswerPayload `json:"answer"`
}
