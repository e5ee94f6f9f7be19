package utils

// Minimal server-side i18n for fixed keys. The questionnaire copy lives in
// the catalog; the server only localizes a handful of envelope strings.

var translations = map[string]map[string]string{
	"es": {
		"health.ok":         "ok",
		"result.ready":      "resultado disponible",
		"session.not_found": "sesión no encontrada",
	},
	"en": {
		"health.ok":         "ok",
		"result.ready":      "result available",
		"session.not_found": "session not found",
	},
}

// T returns the translated string for key in locale; falls back to Spanish.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["es"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
