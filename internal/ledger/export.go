package ledger

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"pcr-journal/internal/models"
)

type csvRow struct {
	ID         string `csv:"id"`
	Date       string `csv:"date"`
	TakenAt    string `csv:"taken_at"`
	Segment    string `csv:"segment"`
	Strike     string `csv:"strike"`
	PCR        string `csv:"pcr"`
	Spot       string `csv:"spot"`
	Side       string `csv:"side"`
	Entry      string `csv:"entry"`
	StopLoss   string `csv:"stop_loss"`
	Target1    string `csv:"target_1"`
	Target2    string `csv:"target_2"`
	Target3    string `csv:"target_3"`
	Qty        string `csv:"qty"`
	Exit       string `csv:"exit"`
	Result     string `csv:"result"`
	Percentage string `csv:"percentage"`
	Note       string `csv:"note"`
}

// ExportCSV writes seq as CSV with a header row.
func ExportCSV(w io.Writer, seq []models.Trade) error {
	rows := make([]*csvRow, 0, len(seq))
	for _, t := range seq {
		r := &csvRow{
			ID:         t.ID,
			Date:       t.Date,
			Segment:    string(t.Segment),
			Strike:     t.Strike.String(),
			PCR:        t.PCR.String(),
			Spot:       t.Spot.String(),
			Side:       string(t.Side),
			Entry:      t.Entry.StringFixed(2),
			StopLoss:   t.StopLoss.StringFixed(2),
			Qty:        t.Qty.String(),
			Exit:       t.Exit.String(),
			Result:     t.Result.String(),
			Percentage: t.Percentage.String(),
			Note:       t.Note,
		}
		if !t.TakenAt.IsZero() {
			r.TakenAt = t.TakenAt.Format(time.RFC3339)
		}
		targets := []*string{&r.Target1, &r.Target2, &r.Target3}
		for i, tg := range t.Targets {
			if i < len(targets) {
				*targets[i] = tg.StringFixed(2)
			}
		}
		rows = append(rows, r)
	}
	return gocsv.Marshal(&rows, w)
}
