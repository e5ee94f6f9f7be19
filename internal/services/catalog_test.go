package services

import "testing"

func TestDefaultCatalogShape(t *testing.T) {
	catalog := DefaultCatalog()
	if catalog.Len() != 10 {
		t.Fatalf("catalog has %d questions, want 10", catalog.Len())
	}

	counts := map[Category]int{}
	for i, q := range catalog.All() {
		if q.ID != i+1 {
			t.Errorf("question at position %d has id %d", i, q.ID)
		}
		if q.StemI18n["es"] == "" {
			t.Errorf("question %d missing Spanish stem", q.ID)
		}
		counts[q.Category]++
	}
	if counts[CategoryStressAnxiety] != 3 {
		t.Errorf("stress items = %d, want 3", counts[CategoryStressAnxiety])
	}
	if counts[CategoryMoodAnhedonia] != 3 {
		t.Errorf("mood items = %d, want 3", counts[CategoryMoodAnhedonia])
	}
	if counts[CategoryCognitiveControl] != 4 {
		t.Errorf("cognitive control items = %d, want 4", counts[CategoryCognitiveControl])
	}

	for _, q := range catalog.All() {
		if q.Reversed {
			t.Errorf("question %d is flagged reversed; the shipped catalog has none", q.ID)
		}
	}
}

func TestCatalogByID(t *testing.T) {
	catalog := DefaultCatalog()
	q, ok := catalog.ByID(10)
	if !ok || q.ID != 10 {
		t.Fatalf("ByID(10) = %v, %v", q, ok)
	}
	if _, ok := catalog.ByID(11); ok {
		t.Error("ByID(11) should not exist")
	}
}

func TestStemLocaleFallback(t *testing.T) {
	q, _ := DefaultCatalog().ByID(1)
	if q.Stem("en") == "" || q.Stem("en") == q.Stem("es") {
		t.Errorf("english stem missing or identical to spanish")
	}
	if q.Stem("fr") != q.Stem("es") {
		t.Errorf("unsupported locale must fall back to spanish")
	}
}

func TestAnswerOptionLabels(t *testing.T) {
	for _, locale := range []string{"es", "en", "fr"} {
		labels := AnswerOptionLabels(locale)
		if len(labels) != MaxAnswerValue+1 {
			t.Errorf("locale %s: %d labels, want %d", locale, len(labels), MaxAnswerValue+1)
		}
	}
	if AnswerOptionLabels("es")[0] != "Nunca o 1 día" {
		t.Errorf("unexpected first spanish label: %q", AnswerOptionLabels("es")[0])
	}
}
