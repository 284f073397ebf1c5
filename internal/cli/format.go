// Package cli provides the command-line interface for the PCR journal.
package cli

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pcr-journal/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// FormatIndianCurrency formats an amount in Indian currency format (lakhs, crores).
func FormatIndianCurrency(amount decimal.Decimal) string {
	return utils.FormatIndianCurrency(amount)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl decimal.Decimal) string {
	formatted := FormatIndianCurrency(pnl)
	if pnl.IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value decimal.Decimal) string {
	sign := ""
	if value.IsPositive() {
		sign = "+"
	}
	return sign + value.StringFixed(2) + "%"
}

// FormatPrice formats a premium with two decimal places.
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}

// FormatPCR formats put-call ratio.
func FormatPCR(pcr decimal.Decimal) string {
	return pcr.StringFixed(2)
}

// FormatTargets joins target premiums as "144.00 / 168.00 / 192.00".
func FormatTargets(targets []decimal.Decimal) string {
	if len(targets) == 0 {
		return "-"
	}
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = FormatPrice(t)
	}
	return strings.Join(parts, " / ")
}

// FormatTime formats a time as HH:MM:SS in loc.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("15:04:05")
}

// FormatDate formats a YYYY-MM-DD day key as 02-Jan-2006.
// Unparseable input is returned unchanged.
func FormatDate(day string) string {
	t, ok := utils.ParseDay(day, time.UTC)
	if !ok {
		return day
	}
	return t.Format("02-Jan-2006")
}

// OrDash returns s, or "-" when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// TruncateString truncates a string to max runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	w := displayWidth(s)
	if w >= length {
		return s
	}
	return strings.Repeat(" ", length-w) + s
}
