package models

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NumText is user-editable decimal text that may be empty.
// It decodes from either a JSON string or a JSON number.
type NumText string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NumText(num.String())
	return nil
}

// Decimal parses the text. ok is false when it is empty or not numeric.
func (n NumText) Decimal() (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// String returns the raw text.
func (n NumText) String() string {
	return string(n)
}

// Trade represents an accepted trade in the ledger.
type Trade struct {
	ID string `json:"id"`

	Segment   Segment         `json:"segment"`
	Strike    decimal.Decimal `json:"strike"`
	PCR       decimal.Decimal `json:"pcr"`
	CallPrice decimal.Decimal `json:"callPrice"`
	PutPrice  decimal.Decimal `json:"putPrice"`
	Spot      decimal.Decimal `json:"spot"`

	Date    string    `json:"date"` // YYYY-MM-DD, derived from TakenAt
	TakenAt time.Time `json:"takenAt"`

	Side     Side              `json:"side"`
	Entry    decimal.Decimal   `json:"entry"`
	StopLoss decimal.Decimal   `json:"stopLoss"`
	Targets  []decimal.Decimal `json:"targets"`

	Qty        NumText `json:"qty"`
	Exit       NumText `json:"exit"`
	Result     NumText `json:"result"`
	Percentage NumText `json:"percentage"`
	Note       string  `json:"note"`
}

// UnmarshalJSON implements json.Unmarshaler. The market inputs are read
// leniently: stored text keeps its leading number ("22000 " is 22000) and
// anything without one decodes as zero, so one odd field never rejects the
// whole journal.
func (t *Trade) UnmarshalJSON(b []byte) error {
	type plain Trade
	aux := struct {
		*plain
		Strike    NumText `json:"strike"`
		PCR       NumText `json:"pcr"`
		CallPrice NumText `json:"callPrice"`
		PutPrice  NumText `json:"putPrice"`
		Spot      NumText `json:"spot"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.Strike = leadingDecimal(aux.Strike)
	t.PCR = leadingDecimal(aux.PCR)
	t.CallPrice = leadingDecimal(aux.CallPrice)
	t.PutPrice = leadingDecimal(aux.PutPrice)
	t.Spot = leadingDecimal(aux.Spot)
	return nil
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

func leadingDecimal(n NumText) decimal.Decimal {
	if d, ok := n.Decimal(); ok {
		return d
	}
	m := leadingNumber.FindString(strings.TrimSpace(string(n)))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ResultValue returns the realized P&L, treating empty or bad text as zero.
func (t Trade) ResultValue() decimal.Decimal {
	d, _ := t.Result.Decimal()
	return d
}

// Closed reports whether the trade has a realized result.
func (t Trade) Closed() bool {
	_, ok := t.Result.Decimal()
	return ok
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() Trade {
	if t.Targets != nil {
		t.Targets = append([]decimal.Decimal(nil), t.Targets...)
	}
	return t
}
