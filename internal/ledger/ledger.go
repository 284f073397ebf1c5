// Package ledger owns the journal of accepted trades and keeps it mirrored
// in a key-value store.
//
// The full collection is rewritten on every mutation. At journal scale this
// is simpler than incremental writes and needs no transaction log.
package ledger

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pcr-journal/internal/errors"
	"pcr-journal/internal/logging"
	"pcr-journal/internal/models"
	"pcr-journal/internal/store"
	"pcr-journal/pkg/utils"
)

// CorruptSuffix is appended to the ledger key to hold an undecodable blob.
const CorruptSuffix = ".corrupt"

var hundred = decimal.NewFromInt(100)

// Ledger is the ordered list of accepted trades.
type Ledger struct {
	mu     sync.Mutex
	kv     store.KVStore
	key    string
	now    func() time.Time
	loc    *time.Location
	newID  func() string
	logger zerolog.Logger
	trades []models.Trade
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source used to stamp new trades.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the timezone that defines a trade's calendar day.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// WithIDGenerator overrides trade ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New creates an empty ledger backed by kv. Call Load to rehydrate it.
func New(kv store.KVStore, opts ...Option) *Ledger {
	l := &Ledger{
		kv:     kv,
		key:    store.KeyTradeLogs,
		now:    time.Now,
		loc:    utils.IndiaLocation,
		newID:  uuid.NewString,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory ledger with the stored one.
//
// An absent key yields an empty ledger. A blob that cannot be decoded also
// yields an empty ledger; the blob is copied to key+CorruptSuffix and a
// *errors.StorageParseError is returned alongside the empty result so the
// caller can warn and carry on.
func (l *Ledger) Load(ctx context.Context) ([]models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.kv.Get(ctx, l.key)
	if errors.Is(err, errors.ErrKeyNotFound) {
		l.trades = nil
		return []models.Trade{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading ledger")
	}

	var trades []models.Trade
	if derr := json.Unmarshal(raw, &trades); derr != nil {
		l.trades = nil
		if berr := l.kv.Set(ctx, l.key+CorruptSuffix, raw); berr != nil {
			l.logger.Error().Err(berr).Str("key", l.key).Msg("Failed to back up corrupt ledger")
		}
		l.logger.Warn().
			Err(derr).
			Str("key", l.key).
			Int("bytes", len(raw)).
			Msg("Stored ledger could not be parsed, starting empty")
		return []models.Trade{}, errors.NewStorageParseError(l.key, derr)
	}

	if l.normalize(trades) {
		if err := l.persist(ctx, trades); err != nil {
			return nil, errors.Wrap(err, "saving migrated ledger")
		}
		l.logger.Info().Int("trades", len(trades)).Msg("Migrated legacy ledger entries")
	}

	l.trades = trades
	l.logger.Debug().Int("trades", len(trades)).Msg("Ledger loaded")
	return cloneTrades(l.trades), nil
}

// normalize fills in IDs and timestamps missing from older blobs and moves
// legacy day strings to YYYY-MM-DD. It reports whether anything changed.
func (l *Ledger) normalize(trades []models.Trade) bool {
	changed := false
	for i := range trades {
		t := &trades[i]
		if t.ID == "" {
			t.ID = l.newID()
			changed = true
		}
		day, ok := utils.ParseDay(t.Date, l.loc)
		if !ok && !t.TakenAt.IsZero() {
			day, ok = utils.StartOfDay(t.TakenAt.In(l.loc)), true
		}
		if ok {
			if key := utils.DayKey(day); key != t.Date {
				t.Date = key
				changed = true
			}
			if t.TakenAt.IsZero() {
				t.TakenAt = day
				changed = true
			}
		}
		if t.Targets == nil {
			t.Targets = []decimal.Decimal{}
		}
	}
	return changed
}

// Append records a taken trade and persists the ledger.
// Neutral suggestions cannot be taken.
func (l *Ledger) Append(ctx context.Context, input models.TradeInput, s models.Suggestion) (models.Trade, error) {
	if !s.Tradeable() {
		return models.Trade{}, errors.NewInvalidOperationError("append", "a NEUTRAL suggestion cannot be taken")
	}

	segment := input.Segment
	if segment == "" {
		segment = models.SegmentNifty
	}
	now := l.now().In(l.loc)

	t := models.Trade{
		ID:        l.newID(),
		Segment:   segment,
		Strike:    s.Strike,
		PCR:       s.PCR,
		CallPrice: s.CallPrice,
		PutPrice:  s.PutPrice,
		Spot:      s.Spot,
		Date:      utils.DayKey(now),
		TakenAt:   now,
		Side:      s.Side,
		Entry:     s.Entry,
		StopLoss:  s.StopLoss,
		Targets:   append([]decimal.Decimal{}, s.Targets...),
		Qty:       models.NumText(strconv.Itoa(segment.LotSize())),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(cloneTrades(l.trades), t)
	if err := l.persist(ctx, next); err != nil {
		return models.Trade{}, err
	}
	l.trades = next

	logging.LogTrade(l.logger, t.ID, string(t.Segment), string(t.Side), t.Entry.StringFixed(2), t.Qty.String())

	return t.Clone(), nil
}

// Update sets one editable field of the trade identified by id, recomputes
// its result and persists the ledger. On any error the ledger is unchanged.
func (l *Ledger) Update(ctx context.Context, id string, field models.Field, value string) (models.Trade, error) {
	f, ok := models.ParseField(string(field))
	if !ok {
		return models.Trade{}, errors.NewValidationError("field", string(field), "must be one of exit, qty, note")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return models.Trade{}, errors.NewNotFoundError("trade", id)
	}

	t := l.trades[idx].Clone()
	switch f {
	case models.FieldExit:
		t.Exit = models.NumText(value)
	case models.FieldQty:
		t.Qty = models.NumText(value)
	case models.FieldNote:
		t.Note = value
	}
	Recompute(&t)

	next := cloneTrades(l.trades)
	next[idx] = t
	if err := l.persist(ctx, next); err != nil {
		return models.Trade{}, err
	}
	l.trades = next

	logger := logging.WithTradeID(l.logger, id)
	logger.Debug().
		Str("field", string(f)).
		Str("result", t.Result.String()).
		Msg("Trade updated")

	return t.Clone(), nil
}

// Clear empties the ledger and removes its storage key.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.kv.Delete(ctx, l.key); err != nil {
		return errors.Wrap(err, "clearing ledger")
	}
	n := len(l.trades)
	l.trades = nil

	l.logger.Info().Int("trades", n).Msg("Ledger cleared")
	return nil
}

// Trades returns a copy of the ledger in insertion order.
func (l *Ledger) Trades() []models.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneTrades(l.trades)
}

// Get returns the trade with the given id.
func (l *Ledger) Get(id string) (models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return models.Trade{}, errors.NewNotFoundError("trade", id)
	}
	return l.trades[idx].Clone(), nil
}

// Today returns the current calendar day key in the ledger's timezone.
func (l *Ledger) Today() string {
	return utils.DayKey(l.now().In(l.loc))
}

// Location returns the timezone that defines calendar days.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.trades {
		if l.trades[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) persist(ctx context.Context, trades []models.Trade) error {
	if trades == nil {
		trades = []models.Trade{}
	}
	data, err := json.Marshal(trades)
	if err != nil {
		return errors.Wrap(err, "encoding ledger")
	}
	start := time.Now()
	err = l.kv.Set(ctx, l.key, data)
	logging.LogStoreCall(l.logger, "set", l.key, time.Since(start), err)
	if err != nil {
		return errors.Wrap(err, "saving ledger")
	}
	return nil
}

// Recompute derives Result and Percentage from Entry, Exit and Qty.
// Both are cleared unless Exit and Qty are numeric; Percentage is also
// cleared when Entry×Qty is zero.
func Recompute(t *models.Trade) {
	exit, okExit := t.Exit.Decimal()
	qty, okQty := t.Qty.Decimal()
	if !okExit || !okQty {
		t.Result = ""
		t.Percentage = ""
		return
	}

	result := exit.Sub(t.Entry).Mul(qty).Round(2)
	t.Result = models.NumText(result.StringFixed(2))

	cost := t.Entry.Mul(qty)
	if cost.IsZero() {
		t.Percentage = ""
		return
	}
	t.Percentage = models.NumText(result.Div(cost).Mul(hundred).Round(2).StringFixed(2))
}

func cloneTrades(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	for i, t := range trades {
		out[i] = t.Clone()
	}
	return out
}
