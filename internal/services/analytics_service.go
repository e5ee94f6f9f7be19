package services

import "sort"

// AnswerRow is one stored answer joined with its session, the unit analytics
// and exports consume.
type AnswerRow struct {
	SessionID   string
	QuestionID  int
	RawValue    int
	SubmittedAt string // RFC3339
}

// AnalyticsStore exposes the read side analytics needs.
type AnalyticsStore interface {
	ListScreenings() ([]*Screening, error)
	ListAnswerRows() ([]*AnswerRow, error)
}

type AnalyticsService struct {
	store   AnalyticsStore
	catalog *Catalog
}

type QuestionStats struct {
	QuestionID int      `json:"question_id"`
	Category   Category `json:"category"`
	Histogram  []int    `json:"histogram"` // counts per raw value 0..3
	Total      int      `json:"total"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	TotalScreenings int             `json:"total_screenings"`
	BandCounts      map[Band]int    `json:"band_counts"`
	SafetyAlerts    int             `json:"safety_alerts"`
	Questions       []QuestionStats `json:"questions"`
	Timeseries      []DayCount      `json:"timeseries"`
	Alpha           float64         `json:"alpha"`
	AlphaN          int             `json:"alpha_n"`
}

func NewAnalyticsService(store AnalyticsStore, catalog *Catalog) *AnalyticsService {
	return &AnalyticsService{store: store, catalog: catalog}
}

// Summary aggregates band distribution, per-question answer histograms, a
// daily screening timeseries and Cronbach's alpha over complete answer sets.
func (s *AnalyticsService) Summary() (*AnalyticsSummary, error) {
	screenings, err := s.store.ListScreenings()
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListAnswerRows()
	if err != nil {
		return nil, err
	}

	bandCounts := map[Band]int{BandGreen: 0, BandYellow: 0, BandOrange: 0, BandRed: 0}
	safety := 0
	countsByDay := map[string]int{}
	for _, sc := range screenings {
		bandCounts[sc.Band]++
		if sc.SafetyAlert {
			safety++
		}
		countsByDay[sc.CreatedAt.UTC().Format("2006-01-02")]++
	}

	stats := s.buildQuestionStats(rows)
	matrix, n := s.buildAlphaMatrix(rows)

	return &AnalyticsSummary{
		TotalScreenings: len(screenings),
		BandCounts:      bandCounts,
		SafetyAlerts:    safety,
		Questions:       stats,
		Timeseries:      buildTimeseries(countsByDay),
		Alpha:           CronbachAlpha(matrix),
		AlphaN:          n,
	}, nil
}

func (s *AnalyticsService) buildQuestionStats(rows []*AnswerRow) []QuestionStats {
	index := map[int]int{}
	stats := make([]QuestionStats, 0, s.catalog.Len())
	for i, q := range s.catalog.All() {
		stats = append(stats, QuestionStats{
			QuestionID: q.ID,
			Category:   q.Category,
			Histogram:  make([]int, MaxAnswerValue+1),
		})
		index[q.ID] = i
	}
	for _, r := range rows {
		i, ok := index[r.QuestionID]
		if !ok {
			continue
		}
		if r.RawValue >= 0 && r.RawValue <= MaxAnswerValue {
			stats[i].Histogram[r.RawValue]++
			stats[i].Total++
		}
	}
	return stats
}

// buildAlphaMatrix keeps only sessions that answered every catalog question,
// using effective (reversal-adjusted) values.
func (s *AnalyticsService) buildAlphaMatrix(rows []*AnswerRow) ([][]float64, int) {
	bySession := map[string]map[int]float64{}
	for _, r := range rows {
		q, ok := s.catalog.ByID(r.QuestionID)
		if !ok {
			continue
		}
		v, err := EffectiveValue(r.RawValue, q.Reversed)
		if err != nil {
			continue
		}
		if bySession[r.SessionID] == nil {
			bySession[r.SessionID] = map[int]float64{}
		}
		bySession[r.SessionID][r.QuestionID] = float64(v)
	}
	questions := s.catalog.All()
	matrix := make([][]float64, 0, len(bySession))
	for _, m := range bySession {
		row := make([]float64, 0, len(questions))
		complete := true
		for _, q := range questions {
			v, ok := m[q.ID]
			if !ok {
				complete = false
				break
			}
			row = append(row, v)
		}
		if complete {
			matrix = append(matrix, row)
		}
	}
	return matrix, len(matrix)
}

func buildTimeseries(counts map[string]int) []DayCount {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DayCount, 0, len(days))
	for _, d := range days {
		out = append(out, DayCount{Date: d, Count: counts[d]})
	}
	return out
}
