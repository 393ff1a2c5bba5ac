package validation

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	digitsOnly    = regexp.MustCompile(`^[0-9]{13,19}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	mod97         = big.NewInt(97)
	one           = big.NewInt(1)
)

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
}

// ValidateIBAN checks the ISO 7064 MOD-97-10 checksum: the first four
// characters move to the end, every letter maps to two digits (A=10 … Z=35),
// and the resulting decimal number must leave remainder 1 modulo 97.
func ValidateIBAN(iban string) bool {
	iban = normalizeIBAN(iban)
	if !ibanPattern.MatchString(iban) {
		return false
	}

	rearranged := iban[4:] + iban[:4]

	var sb strings.Builder
	sb.Grow(len(rearranged) * 2)
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteString(strconv.Itoa(int(r) - 55))
		default:
			return false
		}
	}

	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, mod97).Cmp(one) == 0
}

// ValidateEmail reports whether the address is syntactically plausible.
// Domain acceptance rules live in ValidateRegistration; this is the bare
// format check used by the record store's structural gate.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateBIC checks the ISO 9362 shape: 6 letters, 2 alphanumerics, and an
// optional 3-character branch code.
func ValidateBIC(bic string) bool {
	return bicPattern.MatchString(strings.ToUpper(bic))
}

// ValidateCardNumber strips whitespace, requires 13–19 digits, then applies
// the Luhn checksum: double every second digit from the right, subtract 9
// from doubles above 9, and require the total to be divisible by 10.
func ValidateCardNumber(number string) bool {
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "\t", "")
	if !digitsOnly.MatchString(number) {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateExpiryDate checks an "MM/YY" card expiry: the month must be 01–12
// and the (month, year) pair must not lie strictly before the current month,
// with years compared modulo 100.
func ValidateExpiryDate(expiry string) bool {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}

	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	now := time.Now()
	curYear := now.Year() % 100
	curMonth := int(now.Month())

	if year != curYear {
		return year > curYear
	}
	return month >= curMonth
}
