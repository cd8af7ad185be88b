// internal/feedback/factshapes.go
package feedback

import "regexp"

// FactShape is one correctable fact category with the expression that
// recognizes it in answer text. The list is configurable so new shapes can
// be added without touching the extraction code.
type FactShape struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultFactShapes covers the fact kinds users correct most: prices,
// times, street addresses, phone numbers and URLs.
func DefaultFactShapes() []FactShape {
	return []FactShape{
		{Name: "price", Pattern: regexp.MustCompile(`(?i)R?\$?\s?\d+[.,]?\d*\s*reais?`)},
		{Name: "time", Pattern: regexp.MustCompile(`\d{1,2}[h:]\d{2}`)},
		{Name: "address", Pattern: regexp.MustCompile(`(?i)(rua|av\.?|avenida|rodovia|estrada)\s+[^,.;\n]+`)},
		{Name: "phone", Pattern: regexp.MustCompile(`\(\d{2}\)\s*\d{4,5}-?\d{4}`)},
		{Name: "url", Pattern: regexp.MustCompile(`https?://[^\s]+`)},
	}
}

// ContainsFact reports whether text carries any of the given fact shapes.
// The synthesizer uses it to refuse generated prose as the only source
// behind numeric or contact data.
func ContainsFact(text string, shapes []FactShape) bool {
	for _, s := range shapes {
		if s.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}
