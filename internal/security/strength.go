package security

import (
	"strings"
	"unicode/utf8"
)

// Strength is the cosmetic password meter shown on the sign-up form. It is
// never used to accept or reject a password.
type Strength struct {
	Score      int    `json:"score"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
	Text       string `json:"text"`
}

const (
	colorWeak   = "#ef4444"
	colorFair   = "#f97316"
	colorGood   = "#f59e0b"
	colorStrong = "#10b981"
)

func PasswordStrength(password string) Strength {
	var (
		score   int
		missing []string
	)

	if utf8.RuneCountInString(password) >= 8 {
		score += 25
	} else {
		missing = append(missing, "at least 8 characters")
	}
	if strings.IndexFunc(password, isASCIILower) >= 0 {
		score += 25
	} else {
		missing = append(missing, "lowercase letter")
	}
	if strings.IndexFunc(password, isASCIIUpper) >= 0 {
		score += 25
	} else {
		missing = append(missing, "uppercase letter")
	}
	if strings.IndexFunc(password, isASCIIDigit) >= 0 {
		score += 25
	} else {
		missing = append(missing, "number")
	}
	if strings.IndexFunc(password, isSymbol) >= 0 {
		score += 10
	}

	s := Strength{
		Score:      score,
		Percentage: min(score, 100),
		Color:      colorWeak,
		Text:       "Weak password",
	}
	switch {
	case score >= 80:
		s.Color, s.Text = colorStrong, "Strong password"
	case score >= 60:
		s.Color, s.Text = colorGood, "Good password"
	case score >= 40:
		s.Color, s.Text = colorFair, "Fair password"
	}

	if len(missing) > 0 && score < 80 {
		if len(missing) > 2 {
			missing = missing[:2]
		}
		s.Text = "Add: " + strings.Join(missing, ", ")
	}
	return s
}

func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// isSymbol is anything outside [A-Za-z0-9], whitespace included.
func isSymbol(r rune) bool {
	return !isASCIILower(r) && !isASCIIUpper(r) && !isASCIIDigit(r)
}
