package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// wknRegex checks for the format: 6 alphanumeric characters, no vowels by
// convention but issuers are sloppy, so only the shape is enforced.
var wknRegex = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// currencyCodeRegex checks for the format: 3 uppercase letters.
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// Security represents an instrument referenced by a statement: a stock, an
// ETF, a bond, a crypto asset, or a non-listed contract such as an OTC
// option.
//
// All identifier fields are optional. A listed instrument usually carries an
// ISIN, sometimes a WKN or a ticker; an OTC option carries none, in which
// case name and currency act as its identity.
type Security struct {
	ISIN     string
	WKN      string
	Ticker   string
	Name     string
	Currency string
}

// Key returns the deduplication key for the security: the first present
// identifier, or name+currency for non-listed instruments.
func (s *Security) Key() string {
	switch {
	case s.ISIN != "":
		return "isin:" + s.ISIN
	case s.WKN != "":
		return "wkn:" + s.WKN
	case s.Ticker != "":
		return "ticker:" + s.Ticker
	default:
		return "name:" + s.Name + "/" + s.Currency
	}
}

func (s *Security) Equal(o *Security) bool {
	if s == nil || o == nil {
		return s == o
	}
	return *s == *o
}

// MarshalJSON implements the json.Marshaler interface for Security.
func (s Security) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("isin", s.ISIN)
	w.Optional("wkn", s.WKN)
	w.Optional("ticker", s.Ticker)
	w.Append("name", s.Name)
	w.Append("currency", s.Currency)
	return w.MarshalJSON()
}

// ValidateCurrency checks that a string is a plausible ISO 4217 code.
func ValidateCurrency(code string) error {
	if !currencyCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid currency code %q: must be 3 uppercase letters", code)
	}
	return nil
}

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	// 1. Length validation
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}

	// 2. Format validation
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// 3. Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// 4. Apply a variation of the Luhn algorithm
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))

		if isSecond {
			digit *= 2
		}

		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	// 5. Validate the check digit
	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit, _ := strconv.Atoi(string(isin[11]))

	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}

	return nil
}

// ValidateWKN checks if a string conforms to the WKN shape.
func ValidateWKN(wkn string) error {
	if !wknRegex.MatchString(wkn) {
		return fmt.Errorf("invalid WKN %q: must be 6 uppercase alphanumeric characters", wkn)
	}
	return nil
}
