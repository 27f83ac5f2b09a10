package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// DefaultFormName is used when a form is created without a name
const DefaultFormName = "Untitled Form"

// FieldType tags the variant of a form field
type FieldType string

// Field types
const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
)

// Field is one input definition. Type selects which of the optional attributes
// apply and how answers are checked.
type Field struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
}

type fieldKind struct {
	placeholder bool
	options     bool
	// checkAnswer returns a message describing why v is unacceptable, or ""
	checkAnswer func(f Field, v any) string
}

var fieldKinds = map[FieldType]fieldKind{
	FieldText:     {placeholder: true, checkAnswer: checkString},
	FieldTextarea: {placeholder: true, checkAnswer: checkString},
	FieldEmail:    {placeholder: true, checkAnswer: checkEmail},
	FieldNumber:   {placeholder: true, checkAnswer: checkNumber},
	FieldCheckbox: {checkAnswer: checkBool},
	FieldSelect:   {options: true, checkAnswer: checkOption},
}

// Categorical reports whether answers to the field form a small set of values
func (f Field) Categorical() bool {
	return f.Type == FieldSelect || f.Type == FieldCheckbox
}

// Validate checks the field definition against its variant
func (f Field) Validate() error {
	kind, ok := fieldKinds[f.Type]
	if !ok {
		return fmt.Errorf("unsupported field type %q", f.Type)
	}
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("field id is required")
	}
	if strings.TrimSpace(f.Label) == "" {
		return fmt.Errorf("field label is required")
	}
	if kind.options && len(f.Options) == 0 {
		return fmt.Errorf("%s field requires options", f.Type)
	}
	if !kind.options && len(f.Options) > 0 {
		return fmt.Errorf("%s field does not take options", f.Type)
	}
	if !kind.placeholder && f.Placeholder != "" {
		return fmt.Errorf("%s field does not take a placeholder", f.Type)
	}
	return nil
}

// ValidateFields checks every field and that ids are unique within the list
func ValidateFields(fields []Field) error {
	problems := map[string]string{}
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		key := fmt.Sprintf("content[%d]", i)
		if err := f.Validate(); err != nil {
			problems[key] = err.Error()
			continue
		}
		if seen[f.ID] {
			problems[key] = fmt.Sprintf("duplicate field id %q", f.ID)
			continue
		}
		seen[f.ID] = true
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// ValidateAnswers checks a submission's answer map against the form's fields.
// Keys that match no field are kept as-is.
func ValidateAnswers(fields []Field, data map[string]any) error {
	problems := map[string]string{}
	for _, f := range fields {
		v := data[f.ID]
		if isMissingAnswer(v) {
			if f.Required {
				problems[f.ID] = "field is required"
			}
			continue
		}
		kind, ok := fieldKinds[f.Type]
		if !ok {
			continue
		}
		if msg := kind.checkAnswer(f, v); msg != "" {
			problems[f.ID] = msg
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// isMissingAnswer reports whether a required field was left unanswered.
// Numeric zero is a real answer.
func isMissingAnswer(v any) bool {
	switch val := v.(type) {
	case float64, int:
		return false
	case nil, string, bool, []any:
		return IsEmptyAnswer(val)
	}
	return false
}

// IsEmptyAnswer reports whether v carries nothing worth counting: nil, blank
// string, false, zero or an empty list
func IsEmptyAnswer(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case int:
		return val == 0
	case []any:
		return len(val) == 0
	}
	return false
}

func checkString(_ Field, v any) string {
	if _, ok := v.(string); !ok {
		return "must be text"
	}
	return ""
}

func checkEmail(_ Field, v any) string {
	s, ok := v.(string)
	if !ok || validate.Var(s, "email") != nil {
		return "invalid email format"
	}
	return ""
}

func checkNumber(_ Field, v any) string {
	switch val := v.(type) {
	case float64, int:
		return ""
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return ""
		}
	}
	return "must be a number"
}

func checkBool(_ Field, v any) string {
	if _, ok := v.(bool); !ok {
		return "must be true or false"
	}
	return ""
}

func checkOption(f Field, v any) string {
	s, ok := v.(string)
	if !ok {
		return "must be one of the options"
	}
	for _, o := range f.Options {
		if o == s {
			return ""
		}
	}
	return "must be one of the options"
}

// Theme is the opaque presentation record stored with a form
type Theme map[string]any

// FormSettings controls submission behaviour
type FormSettings struct {
	CollectEmails    bool `json:"collect_emails"`
	LimitOneResponse bool `json:"limit_one_response"`
}

// Form represents a form definition
type Form struct {
	ID               uuid.UUID    `json:"id"`
	WorkspaceID      uuid.UUID    `json:"workspace_id"`
	CreatorID        uuid.UUID    `json:"creator_id"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	IsPublished      bool         `json:"is_published"`
	SubmissionsCount int64        `json:"submissions_count"`
	Content          []Field      `json:"content"`
	Theme            Theme        `json:"theme"`
	Settings         FormSettings `json:"settings"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// FormCreate represents form creation data
type FormCreate struct {
	WorkspaceID uuid.UUID `json:"workspace_id" validate:"required"`
	Name        string    `json:"name" validate:"omitempty,max=255"`
}

// FormContentUpdate replaces content, theme and settings wholesale
type FormContentUpdate struct {
	Content  []Field      `json:"content"`
	Theme    Theme        `json:"theme"`
	Settings FormSettings `json:"settings"`
}

// FormDetailsUpdate represents a partial update of form metadata
type FormDetailsUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// PublicForm is what respondents see
type PublicForm struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Content     []Field      `json:"content"`
	Theme       Theme        `json:"theme"`
	Settings    FormSettings `json:"settings"`
}

// Public strips internal attributes from the form
func (f *Form) Public() *PublicForm {
	return &PublicForm{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Content:     f.Content,
		Theme:       f.Theme,
		Settings:    f.Settings,
	}
}

// RequiresUniqueRespondent reports whether one email may submit only once
func (f *Form) RequiresUniqueRespondent() bool {
	return f.Settings.CollectEmails && f.Settings.LimitOneResponse
}
