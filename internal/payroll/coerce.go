package payroll

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var currencyPrefixes = []string{"KSHS", "KSH", "KES"}

// parseAmount converts a payroll money cell into a non-negative decimal. Thousands separators,
// spaces and a leading currency code are tolerated. ok is false when the cell had to be defaulted.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, false
	}
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(strings.TrimPrefix(s, p))
			s = strings.TrimPrefix(s, ".")
			break
		}
	}
	s = strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func parseAge(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int(f), true
	}
	return 0, false
}

var dobLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02T15:04:05Z07:00",
}

// ageFromBirthDate returns whole years elapsed between the date of birth and now.
func ageFromBirthDate(raw string, now time.Time) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, layout := range dobLayouts {
		dob, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if dob.After(now) {
			return 0, false
		}
		age := now.Year() - dob.Year()
		if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
			age--
		}
		return age, true
	}
	return 0, false
}

func textOr(raw, fallback string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return fallback, false
	}
	return s, true
}
