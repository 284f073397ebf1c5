package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"pcr-journal/internal/models"
	"pcr-journal/pkg/utils"
)

// Read views over a trade sequence. They are pure and recomputed on every
// call; day arguments are YYYY-MM-DD keys.

// FilterByDate returns the trades taken on day.
func FilterByDate(seq []models.Trade, day string) []models.Trade {
	out := make([]models.Trade, 0, len(seq))
	for _, t := range seq {
		if t.Date == day {
			out = append(out, t)
		}
	}
	return out
}

// GroupByDayLabel sums results per day, keyed by a short label such as "May 1".
// Open trades count as zero. Map order is undefined; use DailySeries for a
// chronological series.
func GroupByDayLabel(seq []models.Trade) map[string]decimal.Decimal {
	grouped := make(map[string]decimal.Decimal)
	for _, t := range seq {
		label := utils.DayLabel(t.Date)
		grouped[label] = grouped[label].Add(t.ResultValue())
	}
	return grouped
}

// TotalPnL sums results across seq.
func TotalPnL(seq []models.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range seq {
		total = total.Add(t.ResultValue())
	}
	return total
}

// TodayTotal sums results of the trades taken on today.
func TodayTotal(seq []models.Trade, today string) decimal.Decimal {
	return TotalPnL(FilterByDate(seq, today))
}

// TradesRemaining returns how many more trades fit in today's limit, never
// less than zero.
func TradesRemaining(seq []models.Trade, maxPerDay int, today string) int {
	left := maxPerDay - len(FilterByDate(seq, today))
	if left < 0 {
		return 0
	}
	return left
}

// SortByDateDesc returns a copy of seq, newest first. Trades on the same
// day keep their order by timestamp; ties keep insertion order.
func SortByDateDesc(seq []models.Trade) []models.Trade {
	out := append([]models.Trade(nil), seq...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out
}

// DayPoint is one bar of the daily P&L chart.
type DayPoint struct {
	Day    string          `json:"day"`
	Label  string          `json:"label"`
	PnL    decimal.Decimal `json:"pnl"`
	Trades int             `json:"trades"`
}

// DailySeries returns per-day result sums in chronological order.
func DailySeries(seq []models.Trade) []DayPoint {
	byDay := make(map[string]*DayPoint)
	for _, t := range seq {
		p, ok := byDay[t.Date]
		if !ok {
			p = &DayPoint{Day: t.Date, Label: utils.DayLabel(t.Date), PnL: decimal.Zero}
			byDay[t.Date] = p
		}
		p.PnL = p.PnL.Add(t.ResultValue())
		p.Trades++
	}

	series := make([]DayPoint, 0, len(byDay))
	for _, p := range byDay {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Day < series[j].Day })
	return series
}

// GoalProgress returns current as a percentage of target, rounded to two
// places. A non-positive target yields zero.
func GoalProgress(current, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return current.Div(target).Mul(hundred).Round(2)
}

// SummaryParams are the inputs to Summarize that do not come from the ledger.
type SummaryParams struct {
	Capital         decimal.Decimal
	DailyTarget     decimal.Decimal
	MaxTradesPerDay int
	Today           string
}

// Summary is the dashboard view of the ledger.
type Summary struct {
	Capital     decimal.Decimal `json:"capital"`
	DailyTarget decimal.Decimal `json:"dailyTarget"`
	TodayPnL    decimal.Decimal `json:"todayPnL"`
	GoalPercent decimal.Decimal `json:"goalPercent"`
	TradesToday int             `json:"tradesToday"`
	TradesLeft  int             `json:"tradesLeft"`
	TotalPnL    decimal.Decimal `json:"totalPnL"`
	TotalTrades int             `json:"totalTrades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
}

// Summarize builds the dashboard view.
func Summarize(seq []models.Trade, p SummaryParams) Summary {
	today := FilterByDate(seq, p.Today)
	todayPnL := TotalPnL(today)

	s := Summary{
		Capital:     p.Capital,
		DailyTarget: p.DailyTarget,
		TodayPnL:    todayPnL,
		GoalPercent: GoalProgress(todayPnL, p.DailyTarget),
		TradesToday: len(today),
		TradesLeft:  TradesRemaining(seq, p.MaxTradesPerDay, p.Today),
		TotalPnL:    TotalPnL(seq),
		TotalTrades: len(seq),
	}
	for _, t := range seq {
		if !t.Closed() {
			continue
		}
		switch r := t.ResultValue(); {
		case r.IsPositive():
			s.Wins++
		case r.IsNegative():
			s.Losses++
		}
	}
	return s
}
