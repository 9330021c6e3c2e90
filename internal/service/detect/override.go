package detect

// AnyCode matches every detected code in an Override row.
const AnyCode = "*"

// Override corrects a code the statistical detector is known to confuse.
// When the detected code equals Confused (or Confused is AnyCode) and Recheck(text)
// holds, the code becomes Corrected.
type Override struct {
	Rule      string
	Confused  string
	Recheck   func(text string) bool
	Corrected string
}

// Overrides is an ordered override table; the first matching row wins.
type Overrides []Override

// DefaultOverrides returns the built-in table. Short informal German is regularly
// reported as Somali; other misreadings of text with German function words are
// caught by the catch-all row.
func DefaultOverrides() Overrides {
	return Overrides{
		{Rule: "somali-german", Confused: "so", Recheck: HasGermanIndicator, Corrected: "de"},
		{Rule: "german-indicators", Confused: AnyCode, Recheck: HasGermanIndicator, Corrected: "de"},
	}
}

// Apply returns the corrected code and the applied row, or code and nil when no row matches.
func (o Overrides) Apply(text, code string) (string, *Override) {
	for i := range o {
		row := &o[i]
		if row.Recheck == nil || (row.Confused != AnyCode && row.Confused != code) {
			continue
		}
		if row.Corrected == code {
			continue
		}
		if row.Recheck(text) {
			return row.Corrected, row
		}
	}
	return code, nil
}
