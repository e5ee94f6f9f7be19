package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// ExportLongCSV renders one row per stored answer: session, question, raw and
// effective value, submission time.
func ExportLongCSV(catalog *Catalog, rows []*AnswerRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"session_id", "question_id", "raw_value", "effective_value", "submitted_at"})
	for _, r := range rows {
		effective := r.RawValue
		if q, ok := catalog.ByID(r.QuestionID); ok {
			if v, err := EffectiveValue(r.RawValue, q.Reversed); err == nil {
				effective = v
			}
		}
		rec := []string{
			r.SessionID,
			strconv.Itoa(r.QuestionID),
			strconv.Itoa(r.RawValue),
			strconv.Itoa(effective),
			r.SubmittedAt,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportSummaryCSV renders one row per screening with total, subscores, band
// and triage outcome.
func ExportSummaryCSV(screenings []*Screening) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{
		"session_id", "total_score", "stress", "mood", "cognitive_control",
		"band", "effective_band", "safety_alert", "priority", "triage_type", "created_at",
	})
	for _, sc := range screenings {
		rec := []string{
			sc.SessionID,
			strconv.Itoa(sc.TotalScore),
			strconv.Itoa(sc.Stress),
			strconv.Itoa(sc.Mood),
			strconv.Itoa(sc.CognitiveControl),
			string(sc.Band),
			string(sc.EffectiveBand),
			strconv.FormatBool(sc.SafetyAlert),
			sc.Priority,
			sc.TriageType,
			sc.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
