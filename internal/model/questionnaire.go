package model

// swagger:model Questionnaire
type Questionnaire struct {
	BaseModel
	Name string `gorm:"size:255;not null" json:"name"`
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}

// QuestionnaireJunction 问卷与题目的关联，按 Priority 升序排列
// swagger:model QuestionnaireJunction
type QuestionnaireJunction struct {
	BaseModel
	QuestionnaireID uint      `gorm:"index;type:bigint unsigned" json:"questionnaireId"`
	QuestionID      uint      `gorm:"index;type:bigint unsigned" json:"questionId"`
	Priority        int       `gorm:"default:0" json:"priority"`
	Question        *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (QuestionnaireJunction) TableName() string {
	return "questionnaire_junctions"
}

// QuestionnaireCount 管理端每个用户完成的问卷数
type QuestionnaireCount struct {
	UserID uint   `gorm:"column:user_id" json:"userId"`
	Email  string `gorm:"column:email" json:"email"`
	Count  int64  `gorm:"column:count" json:"count"`
}
