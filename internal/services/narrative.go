package services

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// DetailedAnswer pairs a submitted value with its catalog entry, the input
// shape the narrative generator works from.
type DetailedAnswer struct {
	QuestionID int
	Stem       string
	Category   Category
	Value      int
	Reversed   bool
}

// Narrative is the personalized results text shown alongside the band.
type Narrative struct {
	Interpretation string   `json:"interpretation"`
	ActionPlan     []string `json:"action_plan"`
	Consequences   []string `json:"consequences"`
}

// NarrativeRequest carries everything a generator may use.
type NarrativeRequest struct {
	Answers []DetailedAnswer
	Scores  CategoryScores
	Band    Band
	Name    string
}

// NarrativeGenerator produces a results narrative. Implementations may call
// external services; callers must always be prepared to fall back.
type NarrativeGenerator interface {
	Generate(ctx context.Context, req NarrativeRequest) (*Narrative, error)
}

var (
	// ErrMissingAPIKey means the remote generator has no credential configured.
	ErrMissingAPIKey = errors.New("narrative api key not configured")
	// ErrNarrativeRateLimited maps a remote 429.
	ErrNarrativeRateLimited = errors.New("narrative service rate limited")
	// ErrNarrativeService covers remote-side failures (auth, 5xx, bad payloads).
	ErrNarrativeService = errors.New("narrative service error")
	// ErrNarrativeNetwork covers transport failures and timeouts.
	ErrNarrativeNetwork = errors.New("narrative service unreachable")
	// ErrNarrativeParse means the remote returned text we could not interpret.
	ErrNarrativeParse = errors.New("narrative response unparseable")
)

// GenerateWithFallback tries the remote generator and substitutes the local
// deterministic narrative on any failure. The source tag is "ai" or
// "fallback". The user always gets a narrative.
func GenerateWithFallback(ctx context.Context, gen NarrativeGenerator, req NarrativeRequest) (*Narrative, string) {
	if gen != nil {
		if n, err := gen.Generate(ctx, req); err == nil {
			return n, "ai"
		} else {
			log.Printf("narrative: remote generation failed, using fallback: %v", err)
		}
	}
	return FallbackNarrative(req), "fallback"
}

// FallbackNarrative is the deterministic rule-based narrative: band-specific
// interpretation plus a plan targeted at the dominant subscale. Same inputs,
// same output, no I/O.
func FallbackNarrative(req NarrativeRequest) *Narrative {
	name := req.Name
	if name == "" {
		name = "Hola"
	} else {
		name = "Hola " + name
	}

	n := &Narrative{}
	switch req.Band {
	case BandRed:
		n.Interpretation = fmt.Sprintf("%s, tus respuestas muestran una sobrecarga emocional importante en este momento. Varios síntomas están afectando tu día a día y es fundamental que busques apoyo profesional pronto. No estás solo/a en esto: con la ayuda adecuada estos síntomas mejoran.", name)
		n.Consequences = []string{
			"Los síntomas pueden intensificarse y afectar tu salud física, tu trabajo y tus relaciones.",
			"Postergar la ayuda profesional suele alargar la recuperación.",
		}
	case BandOrange:
		n.Interpretation = fmt.Sprintf("%s, tus respuestas indican una alerta moderada: hay varias áreas que te están afectando de forma significativa. Es el momento de actuar con decisión; una evaluación profesional en las próximas semanas puede marcar una gran diferencia.", name)
		n.Consequences = []string{
			"Sin intervención, los síntomas moderados tienden a consolidarse.",
			"El malestar sostenido desgasta el sueño, la concentración y el ánimo.",
		}
	case BandYellow:
		n.Interpretation = fmt.Sprintf("%s, tus respuestas muestran señales de desgaste en proceso. No es grave, pero sí es la etapa óptima para intervenir: los síntomas leves que se atienden a tiempo son reversibles. Prestarles atención ahora evita que se compliquen más adelante.", name)
		n.Consequences = []string{
			"Síntomas leves que no se atienden pueden progresar a niveles moderados en semanas.",
			"El desgaste sostenido impacta el rendimiento y las relaciones antes de que se note.",
			"Todo lo que observas hoy es reversible si actúas en esta etapa.",
		}
	default:
		n.Interpretation = fmt.Sprintf("%s, tus respuestas muestran una base emocional estable: manejas bien las demandas del día a día. Es un buen momento para consolidar hábitos que protejan ese equilibrio y desarrollar habilidades que te lleven al siguiente nivel de bienestar.", name)
		n.Consequences = []string{
			"Sin hábitos de mantenimiento, el equilibrio actual puede erosionarse en períodos de alta exigencia.",
			"Las habilidades de regulación no practicadas se debilitan con el tiempo.",
		}
	}

	n.ActionPlan = fallbackPlan(req.Band, dominantCategory(req.Scores))
	return n
}

// dominantCategory picks the subscale with the highest load relative to its
// maximum (stress/9, mood/9, cognitive/12). Ties resolve in catalog order.
func dominantCategory(cs CategoryScores) Category {
	stress := float64(cs.Stress) / 9
	mood := float64(cs.Mood) / 9
	cog := float64(cs.CognitiveControl) / 12
	best := CategoryStressAnxiety
	bestV := stress
	if mood > bestV {
		best, bestV = CategoryMoodAnhedonia, mood
	}
	if cog > bestV {
		best = CategoryCognitiveControl
	}
	return best
}

func fallbackPlan(band Band, dominant Category) []string {
	var focus string
	switch dominant {
	case CategoryMoodAnhedonia:
		focus = "Agenda cada día una actividad breve que antes disfrutabas"
	case CategoryCognitiveControl:
		focus = "Anota tus pensamientos repetitivos y fíjales un horario límite"
	default:
		focus = "Práctica de respiración diafragmática dos veces al día"
	}
	switch band {
	case BandRed:
		return []string{
			"Contacta a un profesional de salud mental esta semana",
			focus,
			"Apóyate en una persona de confianza y cuéntale cómo estás",
		}
	case BandOrange:
		return []string{
			"Agenda una evaluación profesional en las próximas semanas",
			focus,
			"Reduce compromisos no esenciales mientras te recuperas",
			"Protege tu horario de sueño con una rutina fija",
		}
	case BandYellow:
		return []string{
			focus,
			"Establece una rutina de sueño y desconexión de pantallas",
			"Incorpora 20 minutos de actividad física la mayoría de los días",
			"Conversa con alguien de confianza sobre lo que te está cargando",
			"Reevalúa tu estado en dos semanas con este mismo cuestionario",
		}
	default:
		return []string{
			"Mantén tus rutinas de sueño, ejercicio y descanso",
			"Practica una técnica de manejo de estrés de forma preventiva",
			"Cultiva tus redes de apoyo con contacto regular",
		}
	}
}
