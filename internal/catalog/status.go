package catalog

import (
	"strings"
	"unicode"
)

var statusLabels = map[string]string{
	"pup":    "PUP",
	"ir":     "IR",
	"s":      "Suspended",
	"o":      "Out",
	"d":      "Doubtful",
	"q":      "Questionable",
	"p":      "Probable",
	"active": "Active",
}

var statusAbbrs = map[string]string{
	"PUP":          "PUP",
	"IR":           "IR",
	"Suspended":    "S",
	"OUT":          "O",
	"Doubtful":     "D",
	"Questionable": "Q",
	"Probable":     "P",
}

// FormatStatus turns an upstream status code into its display label.
// Unrecognised codes are capitalised.
func FormatStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "Active"
	}
	if label, ok := statusLabels[strings.ToLower(status)]; ok {
		return label
	}
	return capitalize(status)
}

// StatusAbbr returns the one-letter badge of a reportable status, or "".
func StatusAbbr(status string) string {
	return statusAbbrs[status]
}

func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
