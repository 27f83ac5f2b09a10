// Package export renders form submissions as CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Rrens/opsflow/internal/domain"
)

const (
	dateHeader      = "Submission Date"
	emailHeader     = "Respondent Email"
	anonymous       = "Anonymous"
	submissionDates = "1/2/2006"
)

// Filename is the attachment name used for a form's export
func Filename(formID fmt.Stringer) string {
	return "form_export_" + formID.String() + ".csv"
}

// WriteCSV writes one header row and one row per submission. Columns follow the
// order of fields; answers for fields no longer on the form are dropped.
func WriteCSV(w io.Writer, fields []domain.Field, submissions []*domain.Submission) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(fields)+2)
	header = append(header, dateHeader)
	for _, f := range fields {
		header = append(header, f.Label)
	}
	header = append(header, emailHeader)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range submissions {
		row := make([]string, 0, len(header))
		row = append(row, s.SubmittedAt.UTC().Format(submissionDates))
		for _, f := range fields {
			row = append(row, Cell(s.Data[f.ID]))
		}
		email := s.RespondentEmail
		if email == "" {
			email = anonymous
		}
		row = append(row, email)

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Cell formats one answer for a CSV column
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Cell(item))
		}
		return strings.Join(parts, ", ")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
