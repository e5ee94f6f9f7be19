package services

// Triage is the urgency recommendation derived from a band.
type Triage struct {
	Priority       string `json:"priority"`
	Recommendation string `json:"recommendation"`
	Type           string `json:"type"`
}

// TriageFor maps a band to its triage recommendation. It is a total,
// deterministic lookup; unrecognized bands fall through to the self-care tier.
func TriageFor(band Band) Triage {
	switch band {
	case BandRed:
		return Triage{Priority: "high", Recommendation: "evaluación clínica prioritaria", Type: "clinical"}
	case BandOrange:
		return Triage{Priority: "medium-high", Recommendation: "evaluación clínica recomendada", Type: "clinical-recommended"}
	case BandYellow:
		return Triage{Priority: "medium", Recommendation: "intervención breve estructurada", Type: "structured"}
	default:
		return Triage{Priority: "low", Recommendation: "recomendaciones específicas de autocuidado", Type: "selfcare"}
	}
}
