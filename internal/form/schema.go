package form

import (
	"questionnaire_backend/internal/model"
)

// Values 表单值，键为题目 ID，值为 string 或 []string
type Values map[string]any

// FieldErrors 字段名到错误提示
type FieldErrors map[string]string

type Schema struct {
	questions []model.Question
	rules     map[string]Rule
}

func BuildSchema(questions []model.Question) (*Schema, error) {
	rules := make(map[string]Rule, len(questions))
	for _, q := range questions {
		r, err := RuleFor(q)
		if err != nil {
			return nil, err
		}
		rules[FieldName(q)] = r
	}
	return &Schema{questions: questions, rules: rules}, nil
}

// Validate 返回全部字段错误，没有错误时返回空 map
func (s *Schema) Validate(values Values) FieldErrors {
	errs := FieldErrors{}
	for _, q := range s.questions {
		name := FieldName(q)
		rule := s.rules[name]
		if err := validate.Var(normalize(q, values[name]), rule.Tag); err != nil {
			errs[name] = rule.Message
		}
	}
	return errs
}

// DefaultValues lastAnswers 与 questions 按下标对应
func DefaultValues(questions []model.Question, lastAnswers []*model.Answer) (Values, error) {
	values := make(Values, len(questions))
	for i, q := range questions {
		var last *model.Answer
		if i < len(lastAnswers) {
			last = lastAnswers[i]
		}
		v, err := Default(q, last)
		if err != nil {
			return nil, err
		}
		values[FieldName(q)] = v
	}
	return values, nil
}

// Fields 按题目顺序渲染全部字段
func Fields(questions []model.Question, values Values) ([]Field, error) {
	fields := make([]Field, 0, len(questions))
	for _, q := range questions {
		f, err := Render(q, values[FieldName(q)])
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ToAnswers 文本题只带 text，选择题只带 options
func ToAnswers(questions []model.Question, values Values) ([]model.AnswerInput, error) {
	answers := make([]model.AnswerInput, 0, len(questions))
	for _, q := range questions {
		v := normalize(q, values[FieldName(q)])
		var payload model.AnswerPayload
		switch q.Question.Type {
		case model.QuestionTypeText:
			payload = model.TextAnswer(v.(string))
		case model.QuestionTypeMCQ:
			payload = model.OptionsAnswer(v.([]string))
		default:
			return nil, unknownType(q)
		}
		answers = append(answers, model.AnswerInput{QuestionID: q.ID, Answer: payload})
	}
	return answers, nil
}
