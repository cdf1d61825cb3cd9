package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerPayload_ScanShapes(t *testing.T) {
	var text AnswerPayload
	require.NoError(t, text.Scan([]byte(`{"text":"hello","options":null}`)))
	require.NotNil(t, text.Text)
	assert.Equal(t, "hello", *text.Text)
	assert.Nil(t, text.Options)

	var mcq AnswerPayload
	require.NoError(t, mcq.Scan(`{"text":null,"options":["a","b"]}`))
	assert.Nil(t, mcq.Text)
	assert.Equal(t, []string{"a", "b"}, mcq.Options)

	var empty AnswerPayload
	require.NoError(t, empty.Scan(nil))
	assert.Error(t, empty.Scan(42))
}

func TestRoles(t *testing.T) {
	var roles Roles
	require.NoError(t, roles.Scan([]byte(`["user","admin"]`)))
	assert.True(t, roles.Has(RoleAdmin))
	assert.False(t, Roles(nil).Has(RoleUser))

	v, err := Roles(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestQuestionType_Valid(t *testing.T) {
	assert.True(t, QuestionTypeText.Valid())
	assert.True(t, QuestionTypeMCQ.Valid())
	assert.False(t, QuestionType("rating").Valid())
}
