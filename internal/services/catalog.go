package services

// Category groups questions into the three screener subscales.
type Category string

const (
	CategoryStressAnxiety    Category = "stress_anxiety"
	CategoryMoodAnhedonia    Category = "mood_anhedonia"
	CategoryCognitiveControl Category = "cognitive_control"
)

// Question is a single screener item. Stems are keyed by locale with "es" as
// the canonical text. Reversed items score as 3-value instead of value.
type Question struct {
	ID       int               `json:"id"`
	StemI18n map[string]string `json:"stem_i18n"`
	Category Category          `json:"category"`
	Reversed bool              `json:"reversed"`
}

// Catalog is the fixed, ordered set of screener questions. It is built once
// and never mutated.
type Catalog struct {
	questions []*Question
	byID      map[int]*Question
}

func NewCatalog(questions []*Question) *Catalog {
	c := &Catalog{questions: questions, byID: make(map[int]*Question, len(questions))}
	for _, q := range questions {
		c.byID[q.ID] = q
	}
	return c
}

// All returns questions in presentation order (which is also scoring order).
func (c *Catalog) All() []*Question { return c.questions }

func (c *Catalog) ByID(id int) (*Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

func (c *Catalog) Len() int { return len(c.questions) }

// Stem returns the localized stem, falling back to Spanish.
func (q *Question) Stem(locale string) string {
	if s := q.StemI18n[locale]; s != "" {
		return s
	}
	return q.StemI18n["es"]
}

var defaultCatalog = NewCatalog([]*Question{
	// Estrés/Ansiedad (E1-E3)
	{ID: 1, Category: CategoryStressAnxiety, StemI18n: map[string]string{
		"es": "Me preocupé tanto que me costó concentrarme en lo que hacía.",
		"en": "I worried so much that it was hard to concentrate on what I was doing.",
	}},
	{ID: 2, Category: CategoryStressAnxiety, StemI18n: map[string]string{
		"es": "Me resultó difícil relajarme incluso cuando tenía tiempo libre.",
		"en": "I found it hard to relax even when I had free time.",
	}},
	{ID: 3, Category: CategoryStressAnxiety, StemI18n: map[string]string{
		"es": "Estuve irritable o me molesté con facilidad.",
		"en": "I was irritable or got upset easily.",
	}},
	// Ánimo/Anhedonia (A1-A3)
	{ID: 4, Category: CategoryMoodAnhedonia, StemI18n: map[string]string{
		"es": "Sentí poco interés al realizar actividades habituales.",
		"en": "I felt little interest in doing my usual activities.",
	}},
	{ID: 5, Category: CategoryMoodAnhedonia, StemI18n: map[string]string{
		"es": "Me sentí decaído/a, triste o con \"baja de ánimo\".",
		"en": "I felt down, sad or in \"low spirits\".",
	}},
	{ID: 6, Category: CategoryMoodAnhedonia, StemI18n: map[string]string{
		"es": "Tuve problemas de sueño (dormir poco, despertar frecuente o dormir en exceso).",
		"en": "I had sleep problems (short sleep, frequent waking or oversleeping).",
	}},
	// Control cognitivo/Rumiación (C1-C4)
	{ID: 7, Category: CategoryCognitiveControl, StemI18n: map[string]string{
		"es": "Di muchas vueltas en la cabeza a los mismos pensamientos o problemas.",
		"en": "I kept going over the same thoughts or problems in my head.",
	}},
	{ID: 8, Category: CategoryCognitiveControl, StemI18n: map[string]string{
		"es": "Pensé con frecuencia que \"no estaba a la altura\" o que fallaría.",
		"en": "I frequently thought I \"was not up to it\" or that I would fail.",
	}},
	{ID: 9, Category: CategoryCognitiveControl, StemI18n: map[string]string{
		"es": "Evité actividades importantes o las postergué por malestar emocional.",
		"en": "I avoided or postponed important activities because of emotional discomfort.",
	}},
	// The shipped catalog flags this item explicitly as non-reversed; keep the
	// flag even though it scores the same as an unflagged item.
	{ID: 10, Category: CategoryCognitiveControl, Reversed: false, StemI18n: map[string]string{
		"es": "Me sentí incapaz de manejar mis emociones cuando aparecieron.",
		"en": "I felt unable to manage my emotions when they came up.",
	}},
})

// DefaultCatalog returns the shipped 10-item screener catalog.
func DefaultCatalog() *Catalog { return defaultCatalog }

// AnswerOptionLabels returns the four frequency labels for the 14-day recall
// window, localized, indexed by answer value.
func AnswerOptionLabels(locale string) []string {
	if locale == "en" {
		return []string{
			"Never or 1 day",
			"Several days (2-6)",
			"More than half the days (7-11)",
			"Nearly every day (12-14)",
		}
	}
	return []string{
		"Nunca o 1 día",
		"Varios días (2-6)",
		"Más de la mitad (7-11)",
		"Casi todos los días (12-14)",
	}
}
