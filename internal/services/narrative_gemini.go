package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiNarrator generates the results narrative through the Gemini
// generateContent REST endpoint.
type GeminiNarrator struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewGeminiNarrator(apiKey string) *GeminiNarrator {
	return &GeminiNarrator{
		APIKey:  apiKey,
		Model:   "gemini-1.5-flash",
		BaseURL: defaultGeminiBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiNarrator) Generate(ctx context.Context, req NarrativeRequest) (*Narrative, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: buildNarrativePrompt(req)}}}},
		GenerationConfig: geminiGenerationConfig{Temperature: 0.7, MaxOutputTokens: 2000},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeService, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(g.BaseURL, "/"), g.Model, g.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeService, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrNarrativeRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrNarrativeService, resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeParse, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrNarrativeParse)
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrNarrativeParse)
	}
	return parseNarrativeText(text)
}

var bandLabelsES = map[Band]string{
	BandGreen:  "Bienestar Alto (Verde)",
	BandYellow: "Alerta Temprana (Amarillo)",
	BandOrange: "Al Límite (Naranjo)",
	BandRed:    "Sobrecarga Emocional (Rojo)",
}

var bandLengthGuides = map[Band]string{
	BandGreen:  "El análisis debe ser motivador y sustancial (200-250 palabras), enfocándose en fortalecer capacidades existentes",
	BandYellow: "El análisis debe ser preventivo, detallado y educativo (250-300 palabras), explicando qué significan los síntomas, cómo pueden progresar y por qué este es el momento ideal para intervenir",
	BandOrange: "El análisis debe ser conciso pero completo (200-250 palabras), enfocándose en urgencia sin alarmar",
	BandRed:    "El análisis debe ser breve y directo (150-200 palabras máximo), priorizando lo esencial sin abrumar",
}

func buildNarrativePrompt(req NarrativeRequest) string {
	name := req.Name
	if name == "" {
		name = "el participante"
	}
	labels := AnswerOptionLabels("es")
	var answers strings.Builder
	for _, a := range req.Answers {
		label := "No respondido"
		if a.Value >= 0 && a.Value < len(labels) {
			label = labels[a.Value]
		}
		fmt.Fprintf(&answers, "- %s: %s\n", a.Stem, label)
	}

	return fmt.Sprintf(`Eres un psicólogo clínico experto en bienestar emocional. Analiza los siguientes resultados de un cuestionario de salud mental y genera un análisis personalizado, empático y profesional.

DATOS DEL PARTICIPANTE:
- Nombre: %s
- Resultado General: %s
- Puntaje Estrés/Ansiedad: %d/9
- Puntaje Ánimo/Anhedonia: %d/9
- Puntaje Control Cognitivo: %d/12

RESPUESTAS DETALLADAS:
%s
ESCALA DE RESPUESTAS:
0 = Nunca o 1 día
1 = Varios días (2-6)
2 = Más de la mitad (7-11)
3 = Casi todos los días (12-14)

GUÍA DE EXTENSIÓN: %s

INSTRUCCIONES:
1. Genera un análisis personalizado en primera persona (dirigiéndote a %s) que identifique los patrones más importantes de las respuestas, mencione las áreas de mayor preocupación, reconozca fortalezas y use un tono empático, profesional y NO alarmista.
2. Crea un plan de acción personalizado con 3-5 puntos concretos y breves (máximo 15 palabras cada uno), enfocados en las áreas más críticas identificadas.
3. Describe 2-3 consecuencias específicas de no tomar acción, concisas y en tono de advertencia constructiva.

FORMATO DE RESPUESTA (CRÍTICO - SIGUE EXACTAMENTE ESTE FORMATO):
[INTERPRETACION]
(Texto del análisis personalizado, 2-3 párrafos concisos)
[/INTERPRETACION]

[PLAN]
- Punto 1 del plan de acción
- Punto 2 del plan de acción
- Punto 3 del plan de acción
[/PLAN]

[CONSECUENCIAS]
- Consecuencia 1 de no actuar
- Consecuencia 2 de no actuar
- Consecuencia 3 de no actuar (opcional)
[/CONSECUENCIAS]`,
		name, bandLabelsES[req.Band], req.Scores.Stress, req.Scores.Mood, req.Scores.CognitiveControl,
		answers.String(), bandLengthGuides[req.Band], name)
}

// parseNarrativeText extracts the three tagged blocks from the model output.
func parseNarrativeText(text string) (*Narrative, error) {
	interpretation := extractBlock(text, "INTERPRETACION")
	if strings.TrimSpace(interpretation) == "" {
		return nil, fmt.Errorf("%w: missing interpretation block", ErrNarrativeParse)
	}
	return &Narrative{
		Interpretation: strings.TrimSpace(interpretation),
		ActionPlan:     extractBullets(extractBlock(text, "PLAN")),
		Consequences:   extractBullets(extractBlock(text, "CONSECUENCIAS")),
	}, nil
}

func extractBlock(text, tag string) string {
	open := "[" + tag + "]"
	closing := "[/" + tag + "]"
	i := strings.Index(text, open)
	if i < 0 {
		return ""
	}
	rest := text[i+len(open):]
	j := strings.Index(rest, closing)
	if j < 0 {
		return ""
	}
	return rest[:j]
}

func extractBullets(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") {
			if item := strings.TrimSpace(strings.TrimPrefix(line, "-")); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
