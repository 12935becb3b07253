package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Allow letters, numbers, spaces, and common business punctuation: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

	// E164-like phone: optional +, digits 7-15 length
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	// BIC/SWIFT: 4 letters bank code, 2 letters country, 2 alphanumeric location,
	// optional 3 alphanumeric branch
	bicRegex = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

	ibanCharRegex = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("iban", ValidIBAN)
	_ = v.RegisterValidation("bic", ValidBIC)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// ValidIBAN validates an IBAN with the ISO 13616 mod-97 checksum
func ValidIBAN(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return CheckIBAN(val)
}

// ValidBIC validates a BIC/SWIFT code shape
func ValidBIC(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return bicRegex.MatchString(strings.ToUpper(val))
}

// CheckIBAN validates an IBAN string, tolerating spaces
func CheckIBAN(iban string) bool {
	normalized := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if len(normalized) < 15 || len(normalized) > 34 {
		return false
	}
	if !ibanCharRegex.MatchString(normalized) {
		return false
	}

	// Move the first four characters to the end and compute mod 97 over the
	// digit expansion (A=10 .. Z=35). Valid IBANs leave remainder 1.
	rearranged := normalized[4:] + normalized[:4]
	remainder := 0
	for _, r := range rearranged {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r >= 'A' && r <= 'Z':
			v = int(r-'A') + 10
		default:
			return false
		}
		if v < 10 {
			remainder = (remainder*10 + v) % 97
		} else {
			remainder = (remainder*100 + v) % 97
		}
	}
	return remainder == 1
}
