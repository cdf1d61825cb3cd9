// Package form 按题目类型生成问卷表单：校验规则、默认值与字段渲染。
// 题目类型是封闭集合，新增类型时 Rule/Default/Render 三处都需要处理。
package form

import (
	"fmt"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/util"
	"strconv"

	"github.com/go-playground/validator/v10"
)

const (
	WidgetInput         = "input"
	WidgetCheckboxGroup = "checkbox-group"

	MsgTextRequired = "Answer must not be empty."
	MsgMCQRequired  = "At least one answer is required."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 至少有一项非空字符串
	v.RegisterValidation("some_nonempty", func(fl validator.FieldLevel) bool {
		items, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, item := range items {
			if item != "" {
				return true
			}
		}
		return false
	})
	return v
}

// Rule 单题校验规则，Tag 为 validator 标签
type Rule struct {
	Tag     string
	Message string
}

func RuleFor(q model.Question) (Rule, error) {
	switch q.Question.Type {
	case model.QuestionTypeText:
		return Rule{Tag: "min=1", Message: MsgTextRequired}, nil
	case model.QuestionTypeMCQ:
		return Rule{Tag: "some_nonempty", Message: MsgMCQRequired}, nil
	}
	return Rule{}, unknownType(q)
}

// Default 有历史答案时取历史答案，否则为空值
func Default(q model.Question, last *model.Answer) (any, error) {
	switch q.Question.Type {
	case model.QuestionTypeText:
		if last != nil && last.Answer.Text != nil {
			return *last.Answer.Text, nil
		}
		return "", nil
	case model.QuestionTypeMCQ:
		if last != nil && last.Answer.Options != nil {
			return last.Answer.Options, nil
		}
		return []string{}, nil
	}
	return nil, unknownType(q)
}

type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Widget  string   `json:"widget"`
	Options []string `json:"options,omitempty"`
	Value   any      `json:"value"`
}

func Render(q model.Question, value any) (Field, error) {
	f := Field{
		Name:  FieldName(q),
		Label: q.Question.Question,
		Type:  string(q.Question.Type),
		Value: value,
	}
	switch q.Question.Type {
	case model.QuestionTypeText:
		f.Widget = WidgetInput
	case model.QuestionTypeMCQ:
		f.Widget = WidgetCheckboxGroup
		f.Options = q.Question.Options
		if f.Options == nil {
			f.Options = []string{}
		}
	default:
		return Field{}, unknownType(q)
	}
	return f, nil
}

// FieldName 表单字段名即题目 ID
func FieldName(q model.Question) string {
	return strconv.FormatUint(uint64(q.ID), 10)
}

func unknownType(q model.Question) error {
	return fmt.Errorf("question %d: %w %q", q.ID, util.ErrUnknownQuestionType, q.Question.Type)
}

// normalize 将 JSON 解码后的值转换为题目类型对应的 Go 类型，类型不符时返回零值。
// 选择题去掉空字符串选项
func normalize(q model.Question, v any) any {
	switch q.Question.Type {
	case model.QuestionTypeText:
		s, _ := v.(string)
		return s
	case model.QuestionTypeMCQ:
		out := []string{}
		switch items := v.(type) {
		case []string:
			for _, s := range items {
				if s != "" {
					out = append(out, s)
				}
			}
		case []any:
			for _, item := range items {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}
