package validation

import "strings"

const specialChars = "@$!%*?&"

// StrengthDetails reports which individual criteria a password met.
type StrengthDetails struct {
	MinLength bool `json:"minLength"`
	Lowercase bool `json:"lowercase"`
	Uppercase bool `json:"uppercase"`
	Digit     bool `json:"digit"`
	Special   bool `json:"special"`
}

// Strength is the scored result of a password strength check.
type Strength struct {
	Score    int             `json:"score"` // 0..5
	Strength string          `json:"strength"`
	Details  StrengthDetails `json:"details"`
}

// CheckPasswordStrength scores a password one point for each of: length of
// at least 8, a lowercase letter, an uppercase letter, a digit, and one of
// the special characters @$!%*?&. A score of 4 or more is "strong", exactly
// 3 is "medium", anything below is "weak".
func CheckPasswordStrength(pw string) Strength {
	d := StrengthDetails{
		MinLength: len(pw) >= 8,
	}
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			d.Lowercase = true
		case r >= 'A' && r <= 'Z':
			d.Uppercase = true
		case r >= '0' && r <= '9':
			d.Digit = true
		case strings.ContainsRune(specialChars, r):
			d.Special = true
		}
	}

	score := 0
	for _, met := range []bool{d.MinLength, d.Lowercase, d.Uppercase, d.Digit, d.Special} {
		if met {
			score++
		}
	}

	label := "weak"
	switch {
	case score >= 4:
		label = "strong"
	case score >= 3:
		label = "medium"
	}

	return Strength{Score: score, Strength: label, Details: d}
}
