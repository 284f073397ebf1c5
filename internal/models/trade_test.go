package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeUnmarshal_LenientInputs(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"22000"`, "22000"},
		{`22000`, "22000"},
		{`"22000 "`, "22000"},
		{`"  -1.25x"`, "-1.25"},
		{`".5"`, "0.5"},
		{`"2e3"`, "2000"},
		{`"abc"`, "0"},
		{`""`, "0"},
		{`null`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var trade Trade
			require.NoError(t, json.Unmarshal([]byte(`{"id":"a","strike":`+tt.raw+`,"qty":75}`), &trade))
			assert.Equal(t, tt.want, trade.Strike.String())
			assert.Equal(t, "a", trade.ID)
			assert.Equal(t, NumText("75"), trade.Qty)
		})
	}
}

func TestTradeUnmarshal_RoundTrip(t *testing.T) {
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","segment":"SENSEX","strike":"73000","pcr":"0.5","spot":"73100","side":"CALL","entry":"200","note":"gap up"}`), &trade))

	data, err := json.Marshal(trade)
	require.NoError(t, err)

	var again Trade
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, trade.ID, again.ID)
	assert.Equal(t, SegmentSensex, again.Segment)
	assert.Equal(t, SideCall, again.Side)
	assert.True(t, trade.Strike.Equal(again.Strike))
	assert.True(t, again.CallPrice.IsZero())
	assert.Equal(t, "gap up", again.Note)
	assert.Equal(t, "0.5", again.PCR.String())
	assert.Equal(t, "200", again.Entry.String())
}
