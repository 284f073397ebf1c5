// Package models provides domain models for the PCR trade journal.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Segment represents the index segment a trade is taken on.
type Segment string

const (
	SegmentNifty  Segment = "NIFTY"
	SegmentSensex Segment = "SENSEX"
)

// Lot sizes per segment.
const (
	LotSizeSensex  = 20
	LotSizeDefault = 75
)

// ParseSegment normalizes a user-entered segment. Empty input means NIFTY.
// Unknown segments are kept as given and use the default lot size.
func ParseSegment(s string) Segment {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SegmentNifty
	}
	return Segment(s)
}

// LotSize returns the contract multiplier for the segment.
func (s Segment) LotSize() int {
	if s == SegmentSensex {
		return LotSizeSensex
	}
	return LotSizeDefault
}

// Side represents the direction of a suggested trade.
type Side string

const (
	SideCall    Side = "CALL"
	SidePut     Side = "PUT"
	SideNeutral Side = "NEUTRAL"
)

// TradeInput is the raw market input as typed by the user.
type TradeInput struct {
	Segment   Segment `json:"segment"`
	Strike    string  `json:"strike"`
	PCR       string  `json:"pcr"`
	CallPrice string  `json:"callPrice"`
	PutPrice  string  `json:"putPrice"`
	Spot      string  `json:"spot"`
}

// Suggestion is a recommended trade derived from a TradeInput.
// It is never persisted.
type Suggestion struct {
	Side     Side              `json:"side"`
	Entry    decimal.Decimal   `json:"entry"`
	StopLoss decimal.Decimal   `json:"stopLoss"`
	Targets  []decimal.Decimal `json:"targets"`

	// Parsed input the suggestion was computed from.
	Strike    decimal.Decimal `json:"strike"`
	PCR       decimal.Decimal `json:"pcr"`
	CallPrice decimal.Decimal `json:"callPrice"`
	PutPrice  decimal.Decimal `json:"putPrice"`
	Spot      decimal.Decimal `json:"spot"`
}

// Tradeable reports whether the suggestion can be taken.
func (s Suggestion) Tradeable() bool {
	return s.Side == SideCall || s.Side == SidePut
}

// Field names a user-editable trade field.
type Field string

const (
	FieldExit Field = "exit"
	FieldQty  Field = "qty"
	FieldNote Field = "note"
)

// ParseField returns the Field for name and whether it is editable.
func ParseField(name string) (Field, bool) {
	switch f := Field(strings.ToLower(strings.TrimSpace(name))); f {
	case FieldExit, FieldQty, FieldNote:
		return f, true
	default:
		return f, false
	}
}
