package model

import "database/sql/driver"

// QuestionType 题目类型，取值集合是封闭的
type QuestionType string

const (
	QuestionTypeText QuestionType = "text"
	QuestionTypeMCQ  QuestionType = "mcq"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeMCQ:
		return true
	}
	return false
}

// QuestionBody 题目内容，整体存为 JSON 列
type QuestionBody struct {
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options"` // 仅 mcq
	Question string       `json:"question"`
}

func (b QuestionBody) Value() (driver.Value, error) {
	return marshalJSON(b)
}

func (b *QuestionBody) Scan(value interface{}) error {
	return scanJSON(value, b)
}

// swagger:model Question
type Question struct {
	BaseModel
	Question QuestionBody `gorm:"type:json;column:question;not null" json:"question"`
}

func (Question) TableName() string {
	return "questions"
}
