// Package phone validates raw phone input and normalizes it to the
// "+<dialing prefix><national number>" form used as the verification key.
// Send and verify must both go through Format so the same input always
// lands on the same key.
package phone

import (
	"regexp"
	"strings"
)

// Country describes one supported dialing zone.
type Country struct {
	Code          string // ISO 3166-1 alpha-2
	Flag          string
	Name          string
	Pattern       *regexp.Regexp
	DialingPrefix string
	Example       string
}

// Countries is tried in order and the first matching pattern wins.
// Every pattern accepts the number with its prefix, so formatting a
// formatted number is a no-op.
var Countries = []Country{
	{
		Code:          "SN",
		Flag:          "🇸🇳",
		Name:          "Sénégal",
		Pattern:       regexp.MustCompile(`^(?:221|0)?7[05-8]\d{7}$`),
		DialingPrefix: "221",
		Example:       "+221 70 123 45 67",
	},
	{
		Code:          "ML",
		Flag:          "🇲🇱",
		Name:          "Mali",
		Pattern:       regexp.MustCompile(`^(?:223|0)?[5-9]\d{7}$`),
		DialingPrefix: "223",
		Example:       "+223 70 12 34 56",
	},
	{
		Code:          "BF",
		Flag:          "🇧🇫",
		Name:          "Burkina Faso",
		Pattern:       regexp.MustCompile(`^(?:226|0)?[5-7]\d{7}$`),
		DialingPrefix: "226",
		Example:       "+226 70 12 34 56",
	},
	{
		Code:          "GN",
		Flag:          "🇬🇳",
		Name:          "Guinée",
		Pattern:       regexp.MustCompile(`^(?:224)?6\d{8}$`),
		DialingPrefix: "224",
		Example:       "+224 621 23 45 67",
	},
	{
		Code:          "FR",
		Flag:          "🇫🇷",
		Name:          "France",
		Pattern:       regexp.MustCompile(`^(?:33|0)[67]\d{8}$`),
		DialingPrefix: "33",
		Example:       "+33 6 12 34 56 78",
	},
}

// Result is the outcome of Format. Country is nil when Valid is false.
type Result struct {
	Valid     bool
	Formatted string
	Country   *Country
	Error     string
}

var separators = strings.NewReplacer(" ", "", "\t", "", "(", "", ")", "", "-", "")

// Format validates raw and returns its normalized form.
func Format(raw string) Result {
	cleaned := separators.Replace(strings.TrimSpace(raw))
	digits := strings.TrimPrefix(cleaned, "+")

	for i := range Countries {
		c := &Countries[i]
		if !c.Pattern.MatchString(digits) {
			continue
		}
		national := digits
		if !strings.HasPrefix(national, c.DialingPrefix) {
			national = c.DialingPrefix + strings.TrimPrefix(national, "0")
		}
		return Result{Valid: true, Formatted: "+" + national, Country: c}
	}
	return Result{Error: "Numéro de téléphone invalide. Pays supportés : " + SupportedNames()}
}

// SupportedNames lists the supported country names in match order.
func SupportedNames() string {
	names := make([]string, len(Countries))
	for i, c := range Countries {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// ByCode returns the country with the given ISO code.
func ByCode(code string) (*Country, bool) {
	for i := range Countries {
		if Countries[i].Code == code {
			return &Countries[i], true
		}
	}
	return nil, false
}
