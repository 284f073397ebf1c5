package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcr-journal/internal/errors"
	"pcr-journal/internal/models"
	"pcr-journal/internal/store"
	"pcr-journal/internal/suggest"
	"pcr-journal/pkg/utils"
)

var testNow = time.Date(2024, 5, 1, 10, 30, 0, 0, utils.IndiaLocation)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func newTestLedger(kv store.KVStore) *Ledger {
	return New(kv,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
	)
}

func niftyInput(pcr, call, put string) models.TradeInput {
	return models.TradeInput{
		Segment:   models.SegmentNifty,
		Strike:    "22000",
		PCR:       pcr,
		CallPrice: call,
		PutPrice:  put,
		Spot:      "22050",
	}
}

func mustSuggest(t *testing.T, in models.TradeInput) models.Suggestion {
	t.Helper()
	s, err := suggest.Suggest(in)
	require.NoError(t, err)
	return s
}

// failingStore fails writes on demand.
type failingStore struct {
	*store.MemoryStore
	failSet    bool
	failDelete bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return fmt.Errorf("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return fmt.Errorf("disk gone")
	}
	return f.MemoryStore.Delete(ctx, key)
}

func TestLoad_AbsentKeyIsEmpty(t *testing.T) {
	l := newTestLedger(store.NewMemoryStore())

	trades, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.NotNil(t, trades)
}

func TestAppend_TakesPutSuggestion(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	l := newTestLedger(kv)
	_, err := l.Load(ctx)
	require.NoError(t, err)

	in := niftyInput("1.5", "80", "120")
	trade, err := l.Append(ctx, in, mustSuggest(t, in))
	require.NoError(t, err)

	assert.Equal(t, "t1", trade.ID)
	assert.Equal(t, models.SegmentNifty, trade.Segment)
	assert.Equal(t, models.SidePut, trade.Side)
	assert.Equal(t, "120.00", trade.Entry.StringFixed(2))
	assert.Equal(t, "90.00", trade.StopLoss.StringFixed(2))
	assert.Len(t, trade.Targets, 3)
	assert.Equal(t, models.NumText("75"), trade.Qty)
	assert.Equal(t, "2024-05-01", trade.Date)
	assert.True(t, trade.TakenAt.Equal(testNow))
	assert.Empty(t, trade.Exit)
	assert.Empty(t, trade.Result)
	assert.Empty(t, trade.Percentage)
	assert.Empty(t, trade.Note)
	assert.Equal(t, "22000", trade.Strike.String())

	assert.True(t, kv.Has(store.KeyTradeLogs))
	assert.Len(t, l.Trades(), 1)
}

func TestAppend_LotSizeBySegment(t *testing.T) {
	tests := []struct {
		segment models.Segment
		want    models.NumText
	}{
		{models.SegmentSensex, "20"},
		{models.SegmentNifty, "75"},
		{models.Segment("BANKNIFTY"), "75"},
		{"", "75"},
	}

	for _, tt := range tests {
		t.Run(string(tt.segment), func(t *testing.T) {
			l := newTestLedger(store.NewMemoryStore())
			in := niftyInput("0.5", "80", "120")
			in.Segment = tt.segment

			trade, err := l.Append(context.Background(), in, mustSuggest(t, in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, trade.Qty)
		})
	}
}

func TestAppend_RejectsNeutral(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	l := newTestLedger(kv)

	in := niftyInput("1.0", "80", "120")
	_, err := l.Append(ctx, in, mustSuggest(t, in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidOperation))

	var opErr *errors.InvalidOperationError
	assert.True(t, errors.As(err, &opErr))
	assert.Empty(t, l.Trades())
	assert.False(t, kv.Has(store.KeyTradeLogs))
}

func TestAppend_RollsBackOnPersistFailure(t *testing.T) {
	kv := &failingStore{MemoryStore: store.NewMemoryStore(), failSet: true}
	l := newTestLedger(kv)

	in := niftyInput("1.5", "80", "120")
	_, err := l.Append(context.Background(), in, mustSuggest(t, in))
	require.Error(t, err)
	assert.Empty(t, l.Trades())
}

func TestReload_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	first := newTestLedger(kv)
	_, err := first.Load(ctx)
	require.NoError(t, err)
	in := niftyInput("1.5", "80", "120")
	taken, err := first.Append(ctx, in, mustSuggest(t, in))
	require.NoError(t, err)

	second := New(kv)
	trades, err := second.Load(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, taken.ID, trades[0].ID)
	assert.Equal(t, "120.00", trades[0].Entry.StringFixed(2))
	assert.Equal(t, models.NumText("75"), trades[0].Qty)
	assert.True(t, trades[0].TakenAt.Equal(testNow))
}

func TestReload_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/journal.db"

	kv, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	l := newTestLedger(kv)
	in := niftyInput("0.5", "80", "120")
	taken, err := l.Append(ctx, in, mustSuggest(t, in))
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer kv.Close()

	trades, err := New(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, taken.ID, trades[0].ID)
	assert.Equal(t, models.SideCall, trades[0].Side)
}

func appendOne(t *testing.T, l *Ledger, put string) models.Trade {
	t.Helper()
	in := niftyInput("1.5", "80", put)
	trade, err := l.Append(context.Background(), in, mustSuggest(t, in))
	require.NoError(t, err)
	return trade
}

func TestUpdate_ExitRecomputesResult(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(store.NewMemoryStore())
	trade := appendOne(t, l, "100")

	updated, err := l.Update(ctx, trade.ID, models.FieldExit, "110")
	require.NoError(t, err)
	assert.Equal(t, models.NumText("750.00"), updated.Result)
	assert.Equal(t, models.NumText("10.00"), updated.Percentage)

	got, err := l.Get(trade.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdate_LossAndQtyChange(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(store.NewMemoryStore())
	trade := appendOne(t, l, "100")

	_, err := l.Update(ctx, trade.ID, models.FieldExit, "92.5")
	require.NoError(t, err)
	updated, err := l.Update(ctx, trade.ID, models.FieldQty, "150")
	require.NoError(t, err)

	assert.Equal(t, models.NumText("-1125.00"), updated.Result)
	assert.Equal(t, models.NumText("-7.50"), updated.Percentage)
}

func TestUpdate_MissingValuesClearResult(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(store.NewMemoryStore())
	trade := appendOne(t, l, "100")

	_, err := l.Update(ctx, trade.ID, models.FieldExit, "110")
	require.NoError(t, err)

	updated, err := l.Update(ctx, trade.ID, models.FieldQty, "")
	require.NoError(t, err)
	assert.Empty(t, updated.Result)
	assert.Empty(t, updated.Percentage)

	_, err = l.Update(ctx, trade.ID, models.FieldQty, "75")
	require.NoError(t, err)
	updated, err = l.Update(ctx, trade.ID, models.FieldExit, "abc")
	require.NoError(t, err)
	assert.Empty(t, updated.Result)
	assert.Empty(t, updated.Percentage)
}

func TestUpdate_NoteKeepsResult(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(store.NewMemoryStore())
	trade := appendOne(t, l, "100")

	_, err := l.Update(ctx, trade.ID, models.FieldExit, "110")
	require.NoError(t, err)
	updated, err := l.Update(ctx, trade.ID, models.FieldNote, "target 1 hit")
	require.NoError(t, err)
	assert.Equal(t, "target 1 hit", updated.Note)
	assert.Equal(t, models.NumText("750.00"), updated.Result)
}

func TestUpdate_UnknownIDLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(store.NewMemoryStore())
	appendOne(t, l, "100")
	before := l.Trades()

	_, err := l.Update(ctx, "missing", models.FieldExit, "110")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTradeNotFound))

	var nf *errors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)
	assert.Equal(t, before, l.Trades())
}

func TestUpdate_RejectsUnknownField(t *testing.T) {
	l := newTestLedger(store.NewMemoryStore())
	trade := appendOne(t, l, "100")
	before := l.Trades()

	_, err := l.Update(context.Background(), trade.ID, models.Field("entry"), "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInputValidation))
	assert.Equal(t, before, l.Trades())
}

func TestUpdate_PersistFailureLeavesLedgerUnchanged(t *testing.T) {
	kv := &failingStore{MemoryStore: store.NewMemoryStore()}
	l := newTestLedger(kv)
	trade := appendOne(t, l, "100")

	kv.failSet = true
	_, err := l.Update(context.Background(), trade.ID, models.FieldExit, "110")
	require.Error(t, err)

	got, err := l.Get(trade.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Exit)
	assert.Empty(t, got.Result)
}

func TestUpdate_PersistsEveryEdit(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	l := newTestLedger(kv)
	trade := appendOne(t, l, "100")

	_, err := l.Update(ctx, trade.ID, models.FieldExit, "110")
	require.NoError(t, err)

	trades, err := New(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, models.NumText("750.00"), trades[0].Result)
}

func TestClear_RemovesKey(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	l := newTestLedger(kv)
	appendOne(t, l, "100")
	appendOne(t, l, "90")

	require.NoError(t, l.Clear(ctx))
	assert.Empty(t, l.Trades())
	assert.False(t, kv.Has(store.KeyTradeLogs))

	trades, err := New(kv).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestClear_StoreFailure(t *testing.T) {
	kv := &failingStore{MemoryStore: store.NewMemoryStore()}
	l := newTestLedger(kv)
	appendOne(t, l, "100")

	kv.failDelete = true
	require.Error(t, l.Clear(context.Background()))
	assert.Len(t, l.Trades(), 1)
}

func TestLoad_CorruptBlobRecovers(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, store.KeyTradeLogs, []byte(`{not json`)))

	l := newTestLedger(kv)
	trades, err := l.Load(ctx)
	require.Error(t, err)
	assert.Empty(t, trades)
	assert.True(t, errors.Is(err, errors.ErrStorageParse))

	var perr *errors.StorageParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, store.KeyTradeLogs, perr.Key)

	backup, berr := kv.Get(ctx, store.KeyTradeLogs+CorruptSuffix)
	require.NoError(t, berr)
	assert.Equal(t, `{not json`, string(backup))

	// The ledger stays usable.
	appendOne(t, l, "100")
	assert.Len(t, l.Trades(), 1)
}

// A legacy localStorage blob: numbers and strings
// mixed, day strings from Date.toDateString, no ids.
const legacyBlob = `[
 {"segment":"NIFTY","strike":"22000","pcr":"1.5","callPrice":"80","putPrice":"120","spot":"22050",
  "date":"Wed May 01 2024","side":"PUT","entry":120,"stopLoss":"90.00",
  "targets":["144.00","168.00","192.00"],"qty":75,"exit":"130","result":"750.00","percentage":"8.33","note":""},
 {"segment":"SENSEX","strike":"73000","pcr":"0.5","callPrice":"200","putPrice":"150","spot":"73100",
  "date":"Thu May 02 2024","side":"CALL","entry":200,"stopLoss":"150.00",
  "targets":["240.00","280.00","320.00"],"qty":"20","exit":"","result":"","percentage":"","note":"gap up"}
]`

func TestLoad_MigratesLegacyBlob(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, store.KeyTradeLogs, []byte(legacyBlob)))

	l := newTestLedger(kv)
	trades, err := l.Load(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	first := trades[0]
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, "2024-05-01", first.Date)
	assert.Equal(t, "2024-05-01", utils.DayKey(first.TakenAt.In(utils.IndiaLocation)))
	assert.Equal(t, "120.00", first.Entry.StringFixed(2))
	assert.Equal(t, models.NumText("75"), first.Qty)
	assert.Equal(t, models.NumText("750.00"), first.Result)

	second := trades[1]
	assert.Equal(t, "t2", second.ID)
	assert.Equal(t, "2024-05-02", second.Date)
	assert.Equal(t, "gap up", second.Note)

	// Migration is persisted, so ids are stable across restarts.
	reloaded, err := New(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	assert.Equal(t, "t1", reloaded[0].ID)
	assert.Equal(t, "t2", reloaded[1].ID)

	updated, err := l.Update(ctx, "t2", models.FieldExit, "230")
	require.NoError(t, err)
	assert.Equal(t, models.NumText("600.00"), updated.Result)
	assert.Equal(t, models.NumText("15.00"), updated.Percentage)
}

func TestLoad_LegacyPaddedInputs(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	blob := `[{"segment":"NIFTY","strike":"22000 ","pcr":" 1.5","callPrice":"80abc","putPrice":"","spot":22050,
	  "date":"Wed May 01 2024","side":"PUT","entry":120,"stopLoss":"90.00",
	  "targets":["144.00","168.00","192.00"],"qty":"75","exit":"","result":"","percentage":"","note":""}]`
	require.NoError(t, kv.Set(ctx, store.KeyTradeLogs, []byte(blob)))

	trades, err := newTestLedger(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, "2024-05-01", got.Date)
	assert.Equal(t, "22000", got.Strike.String())
	assert.Equal(t, "1.5", got.PCR.String())
	assert.Equal(t, "80", got.CallPrice.String())
	assert.True(t, got.PutPrice.IsZero())
	assert.Equal(t, "22050", got.Spot.String())
	assert.False(t, kv.Has(store.KeyTradeLogs+CorruptSuffix))
}

func TestDefaultIDsAreUnique(t *testing.T) {
	l := New(store.NewMemoryStore())
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		trade := appendOne(t, l, "100")
		assert.False(t, seen[trade.ID], "duplicate id %s", trade.ID)
		seen[trade.ID] = true
	}
}

func TestTrades_ReturnsCopy(t *testing.T) {
	l := newTestLedger(store.NewMemoryStore())
	appendOne(t, l, "100")

	trades := l.Trades()
	trades[0].Note = "mutated"
	trades[0].Targets[0] = decimal.NewFromInt(1)

	got, err := l.Get(trades[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Note)
	assert.Equal(t, "120.00", got.Targets[0].StringFixed(2))
}

func TestRecompute_ZeroCostLeavesPercentageEmpty(t *testing.T) {
	trade := models.Trade{Entry: decimal.Zero, Qty: "75", Exit: "10"}
	Recompute(&trade)
	assert.Equal(t, models.NumText("750.00"), trade.Result)
	assert.Empty(t, trade.Percentage)

	trade = models.Trade{Entry: decimal.NewFromInt(100), Qty: "0", Exit: "110"}
	Recompute(&trade)
	assert.Equal(t, models.NumText("0.00"), trade.Result)
	assert.Empty(t, trade.Percentage)
}

// Property: result is (exit-entry)*qty and percentage is the move relative
// to entry, for any whole-rupee prices and positive lot counts.
func TestProperty_RecomputeMatchesFormula(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("result and percentage follow entry, exit and qty", prop.ForAll(
		func(entry, exit, qty int64) bool {
			trade := models.Trade{
				Entry: decimal.NewFromInt(entry),
				Exit:  models.NumText(fmt.Sprint(exit)),
				Qty:   models.NumText(fmt.Sprint(qty)),
			}
			Recompute(&trade)

			wantResult := decimal.NewFromInt((exit - entry) * qty)
			gotResult, ok := trade.Result.Decimal()
			if !ok || !gotResult.Equal(wantResult) {
				return false
			}

			wantPct := decimal.NewFromInt(exit - entry).Div(decimal.NewFromInt(entry)).Mul(hundred).Round(2)
			gotPct, ok := trade.Percentage.Decimal()
			return ok && gotPct.Equal(wantPct)
		},
		gen.Int64Range(1, 5000),
		gen.Int64Range(0, 10000),
		gen.Int64Range(1, 2000),
	))

	properties.TestingRun(t)
}
