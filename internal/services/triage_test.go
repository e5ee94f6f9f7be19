package services

import "testing"

func TestTriageFor(t *testing.T) {
	cases := []struct {
		band Band
		want Triage
	}{
		{BandRed, Triage{Priority: "high", Recommendation: "evaluación clínica prioritaria", Type: "clinical"}},
		{BandOrange, Triage{Priority: "medium-high", Recommendation: "evaluación clínica recomendada", Type: "clinical-recommended"}},
		{BandYellow, Triage{Priority: "medium", Recommendation: "intervención breve estructurada", Type: "structured"}},
		{BandGreen, Triage{Priority: "low", Recommendation: "recomendaciones específicas de autocuidado", Type: "selfcare"}},
		{Band("bogus"), Triage{Priority: "low", Recommendation: "recomendaciones específicas de autocuidado", Type: "selfcare"}},
	}
	for _, tc := range cases {
		if got := TriageFor(tc.band); got != tc.want {
			t.Errorf("band %s: got %+v, want %+v", tc.band, got, tc.want)
		}
	}
}

func TestTriageForIsDeterministic(t *testing.T) {
	for _, band := range []Band{BandGreen, BandYellow, BandOrange, BandRed} {
		if TriageFor(band) != TriageFor(band) {
			t.Errorf("band %s: repeated lookups disagree", band)
		}
	}
}
