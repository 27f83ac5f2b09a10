// Package analytics aggregates submissions into chart data.
package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/Rrens/opsflow/internal/domain"
)

const dayLabel = "Jan 2"

// Compute buckets submissions per calendar day (UTC) in chronological order and
// counts answer values for select and checkbox fields.
func Compute(fields []domain.Field, submissions []*domain.Submission) *domain.FormAnalytics {
	result := &domain.FormAnalytics{
		LineChartData: lineChart(submissions),
		Distribution:  distribution(fields, submissions),
		Total:         len(submissions),
	}
	return result
}

func lineChart(submissions []*domain.Submission) []domain.DateCount {
	counts := map[time.Time]int{}
	for _, s := range submissions {
		t := s.SubmittedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		counts[day]++
	}

	days := make([]time.Time, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]domain.DateCount, 0, len(days))
	for _, d := range days {
		out = append(out, domain.DateCount{Date: d.Format(dayLabel), Count: counts[d]})
	}
	return out
}

func distribution(fields []domain.Field, submissions []*domain.Submission) []domain.FieldDistribution {
	out := make([]domain.FieldDistribution, 0)
	for _, f := range fields {
		if !f.Categorical() {
			continue
		}

		index := map[string]int{}
		dist := domain.FieldDistribution{FieldID: f.ID, Label: f.Label, Values: []domain.ValueCount{}}

		for _, s := range submissions {
			for _, v := range values(s.Data[f.ID]) {
				i, ok := index[v]
				if !ok {
					i = len(dist.Values)
					index[v] = i
					dist.Values = append(dist.Values, domain.ValueCount{Value: v})
				}
				dist.Values[i].Count++
			}
		}
		out = append(out, dist)
	}
	return out
}

// values flattens one answer into countable labels, skipping empty ones
func values(v any) []string {
	if list, ok := v.([]any); ok {
		var out []string
		for _, item := range list {
			out = append(out, values(item)...)
		}
		return out
	}
	if domain.IsEmptyAnswer(v) {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}
	case bool:
		return []string{strconv.FormatBool(val)}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case int:
		return []string{strconv.Itoa(val)}
	}
	return nil
}
