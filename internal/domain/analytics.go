package domain

// DateCount is the number of submissions on one calendar day
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ValueCount is the number of answers carrying one value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FieldDistribution holds answer counts for one categorical field
type FieldDistribution struct {
	FieldID string       `json:"field_id"`
	Label   string       `json:"label"`
	Values  []ValueCount `json:"values"`
}

// FormAnalytics summarizes a form's submissions
type FormAnalytics struct {
	LineChartData []DateCount         `json:"line_chart_data"`
	Distribution  []FieldDistribution `json:"distribution"`
	Total         int                 `json:"total"`
}

// Insight is one observation produced by the generative model
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// InsightResult is returned by the insights operation
type InsightResult struct {
	Insights []Insight `json:"insights"`
	Message  string    `json:"message,omitempty"`
}

// NoInsightDataMessage is returned when a form has no submissions
const NoInsightDataMessage = "No data to analyze yet."

// GenerateFormRequest asks the model to draft form fields
type GenerateFormRequest struct {
	Description string  `json:"description" validate:"required,max=4000"`
	FormID      *string `json:"form_id,omitempty" validate:"omitempty,uuid"`
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// GeneratedForm is the result of schema generation
type GeneratedForm struct {
	Content    []Field `json:"content"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
	TokensUsed int     `json:"tokens_used,omitempty"`
	Form       *Form   `json:"form,omitempty"`
}
