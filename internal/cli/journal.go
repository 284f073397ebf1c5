package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"pcr-journal/internal/errors"
	"pcr-journal/internal/ledger"
	"pcr-journal/internal/logging"
	"pcr-journal/internal/models"
	"pcr-journal/internal/store"
	"pcr-journal/internal/suggest"
	"pcr-journal/pkg/utils"
)

// addJournalCommands adds the suggestion and journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSuggestCmd(app))
	rootCmd.AddCommand(newTakeCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newEditCmd(app))
	rootCmd.AddCommand(newClearCmd(app))
	rootCmd.AddCommand(newSummaryCmd(app))
	rootCmd.AddCommand(newChartCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newCapitalCmd(app))
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("segment", "NIFTY", "index segment: NIFTY or SENSEX")
	cmd.Flags().String("strike", "", "strike price")
	cmd.Flags().String("pcr", "", "put/call ratio")
	cmd.Flags().String("call", "", "call option premium")
	cmd.Flags().String("put", "", "put option premium")
	cmd.Flags().String("spot", "", "index spot price")
}

func readInput(cmd *cobra.Command) models.TradeInput {
	segment, _ := cmd.Flags().GetString("segment")
	strike, _ := cmd.Flags().GetString("strike")
	pcr, _ := cmd.Flags().GetString("pcr")
	call, _ := cmd.Flags().GetString("call")
	put, _ := cmd.Flags().GetString("put")
	spot, _ := cmd.Flags().GetString("spot")
	return models.TradeInput{
		Segment:   models.ParseSegment(segment),
		Strike:    strike,
		PCR:       pcr,
		CallPrice: call,
		PutPrice:  put,
		Spot:      spot,
	}
}

func printSuggestion(output *Output, in models.TradeInput, s models.Suggestion) {
	lines := []string{
		fmt.Sprintf("Segment:    %s (lot %d)", in.Segment, in.Segment.LotSize()),
		fmt.Sprintf("PCR:        %s", FormatPCR(s.PCR)),
		fmt.Sprintf("Side:       %s", output.Side(string(s.Side))),
	}
	if s.Tradeable() {
		lines = append(lines,
			fmt.Sprintf("Entry:      %s", FormatPrice(s.Entry)),
			fmt.Sprintf("Stop Loss:  %s", FormatPrice(s.StopLoss)),
			fmt.Sprintf("Targets:    %s", FormatTargets(s.Targets)),
		)
	} else {
		lines = append(lines, output.DimText("No trade: PCR is between the call and put thresholds"))
	}
	output.Box("Suggestion", lines)
}

func newSuggestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a trade from the current PCR",
		Long: `Compute a trade suggestion from the put/call ratio and option premiums.

PCR > 1.3 suggests a PUT, PCR < 0.7 a CALL, anything else is NEUTRAL.
Stop loss is 75% of entry; targets are 120%, 140% and 160%.`,
		Example: `  pcr-journal suggest --pcr 1.5 --call 80 --put 120 --strike 22000 --spot 22050
  pcr-journal suggest --segment SENSEX --pcr 0.5 --call 200 --put 150 --strike 73000 --spot 73100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			in := readInput(cmd)

			s, err := suggest.Suggest(in)
			if err != nil {
				return err
			}
			logging.LogSuggestion(logging.FromContext(cmd.Context()), string(in.Segment), string(s.Side), s.PCR.String(), s.Entry.String())

			if output.IsJSON() {
				return output.JSON(s)
			}
			printSuggestion(output, in, s)
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func newTakeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take the suggested trade and record it",
		Long: `Compute the suggestion for the given inputs and append it to the journal.

A NEUTRAL suggestion cannot be taken. Quantity is one lot: 20 for SENSEX,
75 for everything else.`,
		Example: `  pcr-journal take --pcr 1.5 --call 80 --put 120 --strike 22000 --spot 22050`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			ctx := cmd.Context()
			in := readInput(cmd)

			s, err := suggest.Suggest(in)
			if err != nil {
				return err
			}
			l, err := app.journal(ctx)
			if err != nil {
				return err
			}
			warnLoad(output, app)

			if ledger.TradesRemaining(l.Trades(), app.Config.Journal.MaxTradesPerDay, l.Today()) == 0 {
				output.Warning("Daily trade limit of %d reached", app.Config.Journal.MaxTradesPerDay)
			}

			trade, err := l.Append(ctx, in, s)
			if err != nil {
				if errors.Is(err, errors.ErrInvalidOperation) && !output.IsJSON() {
					printSuggestion(output, in, s)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			printSuggestion(output, in, s)
			output.Success("✓ Trade %s recorded (%s %s, qty %s)", shortID(trade.ID), trade.Segment, trade.Side, trade.Qty)
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func newTradesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List journal trades",
		Long:  "List recorded trades, newest first. Use --date to show a single day.",
		Example: `  pcr-journal trades
  pcr-journal trades --date 2024-05-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			day, _ := cmd.Flags().GetString("date")

			l, err := app.journal(cmd.Context())
			if err != nil {
				return err
			}
			warnLoad(output, app)

			trades := l.Trades()
			if day != "" {
				parsed, ok := utils.ParseDay(day, l.Location())
				if !ok {
					return errors.NewValidationError("date", day, "must be YYYY-MM-DD")
				}
				trades = ledger.FilterByDate(trades, utils.DayKey(parsed))
			}
			trades = ledger.SortByDateDesc(trades)
			total := ledger.TotalPnL(trades)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trades":   trades,
					"totalPnL": total,
				})
			}

			output.Bold("Trades (%d)  Total P&L: %s", len(trades), output.FormatPnL(total))
			output.Println()
			if len(trades) == 0 {
				output.Info("No trades recorded.")
				output.Dim("Tip: record one with 'pcr-journal take'.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Time", "Seg", "Side", "Entry", "SL", "Targets", "Qty", "Exit", "Result", "%", "Note")
			for _, t := range trades {
				result := OrDash(t.Result.String())
				pct := OrDash(t.Percentage.String())
				if t.Closed() {
					result = output.FormatPnL(t.ResultValue())
					if p, ok := t.Percentage.Decimal(); ok {
						pct = output.FormatPercent(p)
					}
				}
				table.AddRow(
					shortID(t.ID),
					FormatDate(t.Date),
					FormatTime(t.TakenAt, l.Location()),
					string(t.Segment),
					output.Side(string(t.Side)),
					FormatPrice(t.Entry),
					FormatPrice(t.StopLoss),
					FormatTargets(t.Targets),
					OrDash(t.Qty.String()),
					OrDash(t.Exit.String()),
					result,
					pct,
					TruncateString(OrDash(t.Note), 24),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("date", "", "show only trades taken on this day (YYYY-MM-DD)")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <exit|qty|note> <value>",
		Short: "Edit the exit, quantity or note of a trade",
		Long: `Set one editable field of a trade. Result and percentage are recomputed.

The id may be abbreviated to any unique prefix, as shown by 'pcr-journal trades'.
An empty value clears the field.`,
		Example: `  pcr-journal edit 3f2a9c1e exit 110
  pcr-journal edit 3f2a9c1e qty 150
  pcr-journal edit 3f2a9c1e note "target 1 hit"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			ctx := cmd.Context()

			field, ok := models.ParseField(args[1])
			if !ok {
				return errors.NewValidationError("field", args[1], "must be one of exit, qty, note")
			}

			l, err := app.journal(ctx)
			if err != nil {
				return err
			}
			warnLoad(output, app)

			id, err := resolveID(l.Trades(), args[0])
			if err != nil {
				return err
			}
			trade, err := l.Update(ctx, id, field, args[2])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade %s updated", shortID(trade.ID))
			if trade.Closed() {
				output.Printf("  Result:     %s\n", output.FormatPnL(trade.ResultValue()))
				if p, ok := trade.Percentage.Decimal(); ok {
					output.Printf("  Percentage: %s\n", output.FormatPercent(p))
				}
			}
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded trade",
		Long:  "Remove all trades from the journal. Asks for confirmation unless --yes is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			yes, _ := cmd.Flags().GetBool("yes")

			l, err := app.journal(cmd.Context())
			if err != nil {
				return err
			}

			warnLoad(output, app)

			n := len(l.Trades())
			if !yes {
				output.Warning("This deletes %d trade(s). Type 'yes' to confirm:", n)
				if !confirm(cmd.InOrStdin()) {
					output.Info("Aborted.")
					return nil
				}
			}

			if err := l.Clear(cmd.Context()); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]int{"cleared": n})
			}
			output.Success("✓ Cleared %d trade(s)", n)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "skip confirmation")
	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's dashboard",
		Long:  "Show capital, today's P&L against the daily target, trades left and overall results.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			ctx := cmd.Context()

			l, err := app.journal(ctx)
			if err != nil {
				return err
			}
			warnLoad(output, app)

			capital, err := currentCapital(cmd, app)
			if err != nil {
				return err
			}
			s := ledger.Summarize(l.Trades(), ledger.SummaryParams{
				Capital:         capital,
				DailyTarget:     app.Config.DailyTarget(),
				MaxTradesPerDay: app.Config.Journal.MaxTradesPerDay,
				Today:           l.Today(),
			})

			if output.IsJSON() {
				return output.JSON(s)
			}

			output.Box("Summary - "+FormatDate(l.Today()), []string{
				fmt.Sprintf("Capital:       %s", FormatIndianCurrency(s.Capital)),
				fmt.Sprintf("Daily Target:  %s", FormatIndianCurrency(s.DailyTarget)),
				fmt.Sprintf("Today's P&L:   %s", output.FormatPnL(s.TodayPnL)),
				fmt.Sprintf("Goal:          %s %s", output.Progress(s.GoalPercent, 20), FormatPercent(s.GoalPercent)),
				fmt.Sprintf("Trades Today:  %d (%d left)", s.TradesToday, s.TradesLeft),
				fmt.Sprintf("Total P&L:     %s", output.FormatPnL(s.TotalPnL)),
				fmt.Sprintf("All Trades:    %d (%d won, %d lost)", s.TotalTrades, s.Wins, s.Losses),
			})
			return nil
		},
	}
}

const chartWidth = 40

func newChartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chart",
		Short: "Chart daily P&L",
		Long:  "Draw a bar per trading day with the day's summed result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)

			l, err := app.journal(cmd.Context())
			if err != nil {
				return err
			}
			warnLoad(output, app)

			series := ledger.DailySeries(l.Trades())
			if output.IsJSON() {
				return output.JSON(series)
			}
			if len(series) == 0 {
				output.Info("No trades recorded.")
				return nil
			}

			output.Bold("Daily P&L")
			output.Println()
			for _, line := range chartLines(output, series, chartWidth) {
				output.Println(line)
			}
			return nil
		},
	}
}

// chartLines renders one bar per day scaled to the largest absolute P&L.
func chartLines(output *Output, series []ledger.DayPoint, width int) []string {
	maxAbs := decimal.Zero
	labelWidth := 0
	for _, p := range series {
		maxAbs = decimal.Max(maxAbs, p.PnL.Abs())
		if w := displayWidth(p.Label); w > labelWidth {
			labelWidth = w
		}
	}

	lines := make([]string, 0, len(series))
	for _, p := range series {
		n := 0
		if maxAbs.IsPositive() {
			n = int(p.PnL.Abs().Mul(decimal.NewFromInt(int64(width))).Div(maxAbs).Round(0).IntPart())
		}
		if n == 0 && !p.PnL.IsZero() {
			n = 1
		}
		bar := output.PnLText(p.PnL, strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%s │%s %s",
			PadLeft(p.Label, labelWidth), bar, output.FormatPnL(p.PnL)))
	}
	return lines
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades as CSV",
		Example: `  pcr-journal export > trades.csv
  pcr-journal export --out trades.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("out")

			l, err := app.journal(cmd.Context())
			if err != nil {
				return err
			}
			trades := l.Trades()

			if path == "" {
				return ledger.ExportCSV(cmd.OutOrStdout(), trades)
			}

			f, err := os.Create(path)
			if err != nil {
				return errors.Wrap(err, "creating export file")
			}
			if err := ledger.ExportCSV(f, trades); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			NewOutput(cmd, app).Success("✓ Exported %d trade(s) to %s", len(trades), path)
			return nil
		},
	}
	cmd.Flags().String("out", "", "write to this file instead of stdout")
	return cmd
}

func newCapitalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capital",
		Short: "Show or set trading capital",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show trading capital",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			capital, err := currentCapital(cmd, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]decimal.Decimal{"capital": capital})
			}
			output.Printf("Capital: %s\n", FormatIndianCurrency(capital))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <amount>",
		Short:   "Store trading capital",
		Example: `  pcr-journal capital set 25000

  # Amounts starting with '-' follow --
  pcr-journal capital set -- -5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			amount, err := suggest.ParseDecimal(args[0])
			if err != nil {
				return errors.NewValidationError("capital", args[0], "must be a number")
			}
			if _, err := app.journal(cmd.Context()); err != nil {
				return err
			}
			if err := store.SetCapital(cmd.Context(), app.Store, amount); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]decimal.Decimal{"capital": amount})
			}
			output.Success("✓ Capital set to %s", FormatIndianCurrency(amount))
			return nil
		},
	})

	return cmd
}

// currentCapital reads the stored capital, falling back to the configured
// default when it is absent or unparseable.
func currentCapital(cmd *cobra.Command, app *App) (decimal.Decimal, error) {
	if _, err := app.journal(cmd.Context()); err != nil {
		return decimal.Zero, err
	}
	capital, ok, err := store.Capital(cmd.Context(), app.Store)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return app.Config.Capital(), nil
	}
	return capital, nil
}

// resolveID maps an exact id or a unique id prefix to a trade id.
func resolveID(trades []models.Trade, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var match string
	for _, t := range trades {
		if t.ID == ref {
			return t.ID, nil
		}
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", errors.NewValidationError("id", ref, "matches more than one trade")
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", errors.NewNotFoundError("trade", ref)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func warnLoad(output *Output, app *App) {
	if app.loadWarning == nil || output.IsJSON() {
		return
	}
	output.Warning("Stored journal could not be read and was moved to %s%s; starting empty.", store.KeyTradeLogs, ledger.CorruptSuffix)
	app.loadWarning = nil
}

func confirm(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
