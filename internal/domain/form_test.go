package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_Validate(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		wantErr bool
	}{
		{"text", Field{ID: "f1", Type: FieldText, Label: "Name", Placeholder: "Jane"}, false},
		{"select with options", Field{ID: "f2", Type: FieldSelect, Label: "Plan", Options: []string{"Free", "Pro"}}, false},
		{"checkbox", Field{ID: "f3", Type: FieldCheckbox, Label: "Agree"}, false},
		{"select without options", Field{ID: "f4", Type: FieldSelect, Label: "Plan"}, true},
		{"unknown type", Field{ID: "f5", Type: "slider", Label: "Score"}, true},
		{"missing id", Field{Type: FieldText, Label: "Name"}, true},
		{"missing label", Field{ID: "f6", Type: FieldText}, true},
		{"options on text", Field{ID: "f7", Type: FieldText, Label: "Name", Options: []string{"a"}}, true},
		{"placeholder on checkbox", Field{ID: "f8", Type: FieldCheckbox, Label: "Agree", Placeholder: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFields_DuplicateIDs(t *testing.T) {
	err := ValidateFields([]Field{
		{ID: "a", Type: FieldText, Label: "One"},
		{ID: "a", Type: FieldEmail, Label: "Two"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "content[1]")
}

func TestValidateAnswers(t *testing.T) {
	fields := []Field{
		{ID: "name", Type: FieldText, Label: "Name", Required: true},
		{ID: "email", Type: FieldEmail, Label: "Email"},
		{ID: "age", Type: FieldNumber, Label: "Age"},
		{ID: "plan", Type: FieldSelect, Label: "Plan", Options: []string{"Free", "Pro"}},
		{ID: "agree", Type: FieldCheckbox, Label: "Agree", Required: true},
	}

	t.Run("valid", func(t *testing.T) {
		err := ValidateAnswers(fields, map[string]any{
			"name":  "Ada",
			"email": "ada@example.com",
			"age":   "36",
			"plan":  "Pro",
			"agree": true,
			"extra": "kept",
		})
		assert.NoError(t, err)
	})

	t.Run("violations are reported per field", func(t *testing.T) {
		err := ValidateAnswers(fields, map[string]any{
			"email": "not-an-email",
			"age":   "old",
			"plan":  "Enterprise",
			"agree": false,
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "field is required", verr.Fields["name"])
		assert.Equal(t, "invalid email format", verr.Fields["email"])
		assert.Equal(t, "must be a number", verr.Fields["age"])
		assert.Equal(t, "must be one of the options", verr.Fields["plan"])
		assert.Equal(t, "field is required", verr.Fields["agree"])
	})

	t.Run("zero answers a required number", func(t *testing.T) {
		required := []Field{{ID: "age", Type: FieldNumber, Label: "Age", Required: true}}
		assert.NoError(t, ValidateAnswers(required, map[string]any{"age": float64(0)}))
		assert.NoError(t, ValidateAnswers(required, map[string]any{"age": 0}))
		assert.NoError(t, ValidateAnswers(required, map[string]any{"age": "0"}))

		var verr *ValidationError
		require.True(t, errors.As(ValidateAnswers(required, map[string]any{"age": ""}), &verr))
		assert.Equal(t, "field is required", verr.Fields["age"])
	})

	t.Run("optional empty answers are accepted", func(t *testing.T) {
		err := ValidateAnswers(fields, map[string]any{"name": "Ada", "agree": true, "age": nil})
		assert.NoError(t, err)
	})
}

func TestForm_RequiresUniqueRespondent(t *testing.T) {
	f := &Form{Settings: FormSettings{CollectEmails: true}}
	assert.False(t, f.RequiresUniqueRespondent())

	f.Settings.LimitOneResponse = true
	assert.True(t, f.RequiresUniqueRespondent())

	f.Settings.CollectEmails = false
	assert.False(t, f.RequiresUniqueRespondent())
}

func TestSubmissionFilter_Normalize(t *testing.T) {
	f := SubmissionFilter{}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageLimit, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f = SubmissionFilter{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxPageLimit, f.Limit)
	assert.Equal(t, 200, f.Offset())
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, int64(3), NewPagination(1, 10, 21).Pages)
	assert.Equal(t, int64(0), NewPagination(1, 10, 0).Pages)
	assert.Equal(t, int64(1), NewPagination(1, 10, 10).Pages)
}
