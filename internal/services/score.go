package services

import "errors"

// Band is the four-tier severity classification of a total score.
type Band string

const (
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandOrange Band = "orange"
	BandRed    Band = "red"
)

// MaxAnswerValue is the top of the ordinal answer range {0..3}.
const MaxAnswerValue = 3

var (
	// ErrInvalidAnswerValue is returned when an answer value falls outside {0..3}.
	ErrInvalidAnswerValue = errors.New("answer value out of range")
	// ErrScoreOutOfRange guards the band classifier against totals outside [0,30].
	// It should be unreachable given validated answers.
	ErrScoreOutOfRange = errors.New("total score out of range")
)

// Answer is one submitted value for a question. Values are ordinal {0..3}
// over a 14-day recall window.
type Answer struct {
	QuestionID int `json:"question_id"`
	Value      int `json:"value"`
}

// CategoryScores holds the three subscale sums.
// Ranges: stress 0-9, mood 0-9, cognitive control 0-12.
type CategoryScores struct {
	Stress           int `json:"stress"`
	Mood             int `json:"mood"`
	CognitiveControl int `json:"cognitive_control"`
}

// Result is the full derived outcome of a completed answer set.
type Result struct {
	TotalScore     int            `json:"total_score"`
	CategoryScores CategoryScores `json:"category_scores"`
	Band           Band           `json:"band"`
	EffectiveBand  Band           `json:"effective_band"`
	SafetyAlert    bool           `json:"safety_alert"`
	Triage         Triage         `json:"triage"`
	// UnknownQuestionIDs lists answer ids absent from the catalog; they are
	// ignored for scoring but surfaced so the caller can log them.
	UnknownQuestionIDs []int `json:"unknown_question_ids,omitempty"`
}

// EffectiveValue maps a raw answer value to its scored value: reversed items
// score as 3-value, everything else scores as-is.
func EffectiveValue(value int, reversed bool) (int, error) {
	if value < 0 || value > MaxAnswerValue {
		return 0, ErrInvalidAnswerValue
	}
	if reversed {
		return MaxAnswerValue - value, nil
	}
	return value, nil
}

// TotalScore sums effective values over every answer whose question exists in
// the catalog. Unanswered questions contribute 0. Unknown question ids are
// returned for the caller to surface; they are not an error.
func TotalScore(catalog *Catalog, answers []Answer) (int, []int, error) {
	total := 0
	var unknown []int
	for _, a := range answers {
		q, ok := catalog.ByID(a.QuestionID)
		if !ok {
			unknown = append(unknown, a.QuestionID)
			continue
		}
		v, err := EffectiveValue(a.Value, q.Reversed)
		if err != nil {
			return 0, nil, err
		}
		total += v
	}
	return total, unknown, nil
}

// SubscaleScores computes the three category sums.
//
// The stress subscale sums RAW answer values and ignores the reversal flag
// entirely; mood and cognitive control sum reversal-adjusted values. The
// asymmetry is the shipped scoring convention and is preserved on purpose, so
// the three subscale sums need not add up to TotalScore.
func SubscaleScores(catalog *Catalog, answers []Answer) (CategoryScores, error) {
	var cs CategoryScores
	for _, a := range answers {
		q, ok := catalog.ByID(a.QuestionID)
		if !ok {
			continue
		}
		if a.Value < 0 || a.Value > MaxAnswerValue {
			return CategoryScores{}, ErrInvalidAnswerValue
		}
		switch q.Category {
		case CategoryStressAnxiety:
			cs.Stress += a.Value
		case CategoryMoodAnhedonia:
			v, err := EffectiveValue(a.Value, q.Reversed)
			if err != nil {
				return CategoryScores{}, err
			}
			cs.Mood += v
		case CategoryCognitiveControl:
			v, err := EffectiveValue(a.Value, q.Reversed)
			if err != nil {
				return CategoryScores{}, err
			}
			cs.CognitiveControl += v
		}
	}
	return cs, nil
}

// ClassifyBand maps a total score onto the four severity bands:
// 0-7 green, 8-15 yellow, 16-22 orange, 23-30 red. Totals outside [0,30]
// fail with ErrScoreOutOfRange rather than clamping.
func ClassifyBand(total int) (Band, error) {
	switch {
	case total < 0 || total > 30:
		return "", ErrScoreOutOfRange
	case total <= 7:
		return BandGreen, nil
	case total <= 15:
		return BandYellow, nil
	case total <= 22:
		return BandOrange, nil
	default:
		return BandRed, nil
	}
}

// EffectiveBand applies the safety override: a raised safety flag forces the
// presented band to red regardless of the computed band.
func EffectiveBand(band Band, safetyFlag bool) Band {
	if safetyFlag {
		return BandRed
	}
	return band
}

// Score runs the whole pipeline over an answer set: total, subscales, band,
// safety override and triage. It either returns a complete Result or fails.
func Score(catalog *Catalog, answers []Answer, safetyFlag bool) (*Result, error) {
	total, unknown, err := TotalScore(catalog, answers)
	if err != nil {
		return nil, err
	}
	cs, err := SubscaleScores(catalog, answers)
	if err != nil {
		return nil, err
	}
	band, err := ClassifyBand(total)
	if err != nil {
		return nil, err
	}
	effective := EffectiveBand(band, safetyFlag)
	return &Result{
		TotalScore:         total,
		CategoryScores:     cs,
		Band:               band,
		EffectiveBand:      effective,
		SafetyAlert:        safetyFlag,
		Triage:             TriageFor(effective),
		UnknownQuestionIDs: unknown,
	}, nil
}
