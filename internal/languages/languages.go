// Package languages holds the static catalog of languages a participant
// may select. Codes are ISO 639-1.
package languages

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var catalog = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "nl", Name: "Dutch"},
	{Code: "ru", Name: "Russian"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "ar", Name: "Arabic"},
	{Code: "hi", Name: "Hindi"},
	{Code: "tr", Name: "Turkish"},
	{Code: "pl", Name: "Polish"},
}

var byCode = func() map[string]Language {
	m := make(map[string]Language, len(catalog))
	for _, l := range catalog {
		m[l.Code] = l
	}
	return m
}()

// All returns the catalog in display order. The returned slice must not be
// modified.
func All() []Language {
	return catalog
}

// IsSupported reports whether code is in the catalog.
func IsSupported(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Name returns the display name for code, falling back to the code itself
// for anything outside the catalog.
func Name(code string) string {
	if l, ok := byCode[code]; ok {
		return l.Name
	}
	return code
}
