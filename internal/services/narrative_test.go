package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseNarrativeText(t *testing.T) {
	text := `[INTERPRETACION]
Hola Ana, tus respuestas muestran un patrón claro.
[/INTERPRETACION]

[PLAN]
- Agenda una evaluación profesional
- Protege tu horario de sueño
[/PLAN]

[CONSECUENCIAS]
- Los síntomas pueden intensificarse
[/CONSECUENCIAS]`

	n, err := parseNarrativeText(text)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(n.Interpretation, "Hola Ana") {
		t.Errorf("interpretation = %q", n.Interpretation)
	}
	if len(n.ActionPlan) != 2 || n.ActionPlan[0] != "Agenda una evaluación profesional" {
		t.Errorf("plan = %v", n.ActionPlan)
	}
	if len(n.Consequences) != 1 {
		t.Errorf("consequences = %v", n.Consequences)
	}
}

func TestParseNarrativeTextMissingInterpretation(t *testing.T) {
	if _, err := parseNarrativeText("[PLAN]\n- algo\n[/PLAN]"); !errors.Is(err, ErrNarrativeParse) {
		t.Errorf("want ErrNarrativeParse, got %v", err)
	}
	if _, err := parseNarrativeText("[INTERPRETACION]texto sin cierre"); !errors.Is(err, ErrNarrativeParse) {
		t.Errorf("unclosed block: want ErrNarrativeParse, got %v", err)
	}
}

func TestExtractBullets(t *testing.T) {
	block := "\n- uno\nno es viñeta\n-   dos  \n- \n"
	got := extractBullets(block)
	if !reflect.DeepEqual(got, []string{"uno", "dos"}) {
		t.Errorf("got %v", got)
	}
}

func TestFallbackNarrativeIsDeterministic(t *testing.T) {
	req := NarrativeRequest{
		Scores: CategoryScores{Stress: 5, Mood: 2, CognitiveControl: 3},
		Band:   BandYellow,
		Name:   "Ana",
	}
	first := FallbackNarrative(req)
	second := FallbackNarrative(req)
	if !reflect.DeepEqual(first, second) {
		t.Error("fallback narrative must be deterministic")
	}
	if !strings.HasPrefix(first.Interpretation, "Hola Ana") {
		t.Errorf("interpretation must greet by name: %q", first.Interpretation)
	}
	if len(first.ActionPlan) == 0 || len(first.Consequences) == 0 {
		t.Errorf("fallback narrative incomplete: %+v", first)
	}
}

func TestFallbackNarrativeCoversAllBands(t *testing.T) {
	for _, band := range []Band{BandGreen, BandYellow, BandOrange, BandRed} {
		n := FallbackNarrative(NarrativeRequest{Band: band})
		if n.Interpretation == "" || len(n.ActionPlan) == 0 {
			t.Errorf("band %s: empty narrative", band)
		}
	}
}

func TestDominantCategory(t *testing.T) {
	cases := []struct {
		scores CategoryScores
		want   Category
	}{
		{CategoryScores{Stress: 9, Mood: 0, CognitiveControl: 0}, CategoryStressAnxiety},
		{CategoryScores{Stress: 0, Mood: 9, CognitiveControl: 0}, CategoryMoodAnhedonia},
		{CategoryScores{Stress: 0, Mood: 0, CognitiveControl: 12}, CategoryCognitiveControl},
		// 6/12 cognitive load is below 6/9 stress load
		{CategoryScores{Stress: 6, Mood: 0, CognitiveControl: 6}, CategoryStressAnxiety},
		// ties resolve in catalog order
		{CategoryScores{Stress: 0, Mood: 0, CognitiveControl: 0}, CategoryStressAnxiety},
	}
	for _, tc := range cases {
		if got := dominantCategory(tc.scores); got != tc.want {
			t.Errorf("%+v: got %s, want %s", tc.scores, got, tc.want)
		}
	}
}

type failingNarrator struct{ err error }

func (f failingNarrator) Generate(context.Context, NarrativeRequest) (*Narrative, error) {
	return nil, f.err
}

type fixedNarrator struct{ n *Narrative }

func (f fixedNarrator) Generate(context.Context, NarrativeRequest) (*Narrative, error) {
	return f.n, nil
}

func TestGenerateWithFallback(t *testing.T) {
	req := NarrativeRequest{Band: BandGreen}

	n, source := GenerateWithFallback(context.Background(), nil, req)
	if source != "fallback" || n == nil {
		t.Fatalf("nil generator: source=%s", source)
	}

	n, source = GenerateWithFallback(context.Background(), failingNarrator{err: ErrNarrativeRateLimited}, req)
	if source != "fallback" || n == nil {
		t.Fatalf("failing generator: source=%s", source)
	}

	want := &Narrative{Interpretation: "ok"}
	n, source = GenerateWithFallback(context.Background(), fixedNarrator{n: want}, req)
	if source != "ai" || n != want {
		t.Fatalf("healthy generator: source=%s n=%v", source, n)
	}
}

func TestBuildNarrativePromptIncludesAnswers(t *testing.T) {
	prompt := buildNarrativePrompt(NarrativeRequest{
		Answers: []DetailedAnswer{{QuestionID: 1, Stem: "Me costó concentrarme.", Value: 2}},
		Scores:  CategoryScores{Stress: 2},
		Band:    BandYellow,
		Name:    "Ana",
	})
	for _, want := range []string{
		"Ana",
		"Alerta Temprana (Amarillo)",
		"Me costó concentrarme.",
		"Más de la mitad (7-11)",
		"[INTERPRETACION]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
