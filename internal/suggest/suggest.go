// Package suggest maps PCR market inputs to a directional option trade.
package suggest

import (
	"strings"

	"github.com/shopspring/decimal"

	"pcr-journal/internal/errors"
	"pcr-journal/internal/models"
)

// PCR thresholds. Above putThreshold buy puts, below callThreshold buy calls.
var (
	putThreshold  = decimal.NewFromFloat(1.3)
	callThreshold = decimal.NewFromFloat(0.7)
)

var (
	stopLossFactor = decimal.NewFromFloat(0.75)
	targetFactors  = []decimal.Decimal{
		decimal.NewFromFloat(1.2),
		decimal.NewFromFloat(1.4),
		decimal.NewFromFloat(1.6),
	}
)

// Suggest computes a trade suggestion for the given input.
// All five numeric fields must parse; strike and spot are carried along
// but do not influence the decision.
func Suggest(input models.TradeInput) (models.Suggestion, error) {
	fields := []struct {
		name string
		raw  string
	}{
		{"strike", input.Strike},
		{"pcr", input.PCR},
		{"callPrice", input.CallPrice},
		{"putPrice", input.PutPrice},
		{"spot", input.Spot},
	}

	values := make([]decimal.Decimal, len(fields))
	for i, f := range fields {
		d, err := ParseDecimal(f.raw)
		if err != nil {
			return models.Suggestion{}, errors.NewValidationError(f.name, f.raw, "must be a number")
		}
		values[i] = d
	}

	s := models.Suggestion{
		Side:      models.SideNeutral,
		Entry:     decimal.Zero,
		StopLoss:  decimal.Zero,
		Targets:   []decimal.Decimal{},
		Strike:    values[0],
		PCR:       values[1],
		CallPrice: values[2],
		PutPrice:  values[3],
		Spot:      values[4],
	}

	switch {
	case s.PCR.GreaterThan(putThreshold):
		s.Side = models.SidePut
		s.Entry = s.PutPrice
	case s.PCR.LessThan(callThreshold):
		s.Side = models.SideCall
		s.Entry = s.CallPrice
	default:
		return s, nil
	}

	s.StopLoss = s.Entry.Mul(stopLossFactor).Round(2)
	s.Targets = make([]decimal.Decimal, len(targetFactors))
	for i, f := range targetFactors {
		s.Targets[i] = s.Entry.Mul(f).Round(2)
	}
	return s, nil
}

// ParseDecimal parses user-entered numeric text. Surrounding whitespace is
// ignored; empty text is an error.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}
