// Package format turns raw market values into display strings and validates ticker syntax.
package format

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"
)

// NotAvailable is rendered for missing values.
const NotAvailable = "N/A"

// ErrInvalidSymbol is returned when a ticker fails the syntax check.
var ErrInvalidSymbol = errors.New("invalid stock symbol")

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]{1,2})?$`)

// ValidateSymbol reports whether s, trimmed and uppercased, is a syntactically
// valid ticker such as "AAPL" or "BRK.B". It does not check that the symbol exists.
func ValidateSymbol(s string) bool {
	return symbolPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeSymbol trims and uppercases s and validates it.
func NormalizeSymbol(s string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(s))
	if !symbolPattern.MatchString(sym) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	return sym, nil
}

func missing(v null.Float) bool {
	return !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)
}

// FormatCurrency renders v in dollars, scaled to B, M or K above 1e3.
func FormatCurrency(v null.Float) string {
	if missing(v) {
		return NotAvailable
	}
	x := v.Float64
	switch abs := math.Abs(x); {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", x/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", x/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.2fK", x/1e3)
	default:
		return fmt.Sprintf("$%.2f", x)
	}
}

// FormatPercentage renders v with the given number of decimals and a "%" suffix.
// v is expected to already be in percent units.
func FormatPercentage(v null.Float, places int) string {
	if missing(v) {
		return NotAvailable
	}
	if places < 0 {
		places = 0
	}
	return fmt.Sprintf("%.*f%%", places, v.Float64)
}

// FormatFraction renders a fraction such as 0.153 as "15.30%".
func FormatFraction(v null.Float, places int) string {
	if missing(v) {
		return NotAvailable
	}
	return FormatPercentage(null.FloatFrom(v.Float64*100), places)
}

// FormatLargeNumber renders v with a T, B, M or K suffix; smaller values are
// rounded to an integer.
func FormatLargeNumber(v null.Float) string {
	if missing(v) {
		return NotAvailable
	}
	x := v.Float64
	switch abs := math.Abs(x); {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", x/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", x/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", x/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", x/1e3)
	default:
		return fmt.Sprintf("%.0f", x)
	}
}

// FormatRatio renders a plain two-decimal ratio such as beta.
func FormatRatio(v null.Float) string {
	if missing(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

// FormatPE renders a price/earnings ratio; non-positive ratios are not meaningful.
func FormatPE(v null.Float) string {
	if missing(v) || v.Float64 <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

// FormatVolume renders a share count with thousands separators.
func FormatVolume(v null.Float) string {
	if missing(v) {
		return NotAvailable
	}
	return humanize.Comma(int64(math.Round(v.Float64)))
}

// FormatDateRange renders "2024-01-02 to 2024-12-31".
func FormatDateRange(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
}
