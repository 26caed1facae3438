package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tradeSimulator/internal/app"
	"tradeSimulator/internal/domain"
	"tradeSimulator/internal/ports"
	"tradeSimulator/internal/utils"
)

const timeLayout = "2006-01-02 15:04"

func newPlaceCommand(rt *runtime) *cobra.Command {
	var leverage int
	var tp, sl float64

	cmd := &cobra.Command{
		Use:   "place PAIR AMOUNT",
		Short: "Open a leveraged trade",
		Long: "Open a trade of AMOUNT margin on PAIR. Take-profit and stop-loss default to\n" +
			"the configured profit/loss percentage, leverage to the default leverage.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current := rt.sim.Settings()
			if !cmd.Flags().Changed("tp") {
				tp = current.ProfitLossPercentage
			}
			if !cmd.Flags().Changed("sl") {
				sl = current.ProfitLossPercentage
			}

			trade, err := rt.sim.PlaceTrade(cmd.Context(), domain.TradeRequest{
				Pair:         args[0],
				EntryAmount:  parseAmount(args[1]),
				Leverage:     leverage,
				TPPercentage: tp,
				SLPercentage: sl,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s %s: %.2f x%d, position %.2f, fee %.2f\n",
				trade.ID, trade.Pair, trade.EntryAmount, trade.Leverage, trade.PositionSize, trade.Fee)
			fmt.Fprintf(cmd.OutOrStdout(), "TP +%s%% / SL -%s%%, available %.2f\n",
				formatPercent(trade.TPPercentage), formatPercent(trade.SLPercentage), rt.sim.AvailableBalance())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&leverage, "leverage", "l", 0, "Leverage 1-100 (default: configured default leverage)")
	flags.Float64Var(&tp, "tp", 0, "Take-profit percentage (default: configured profit/loss percentage)")
	flags.Float64Var(&sl, "sl", 0, "Stop-loss percentage (default: configured profit/loss percentage)")
	return cmd
}

type settleFunc func(s *app.Simulator, ctx context.Context, tradeID string) (*domain.ClosedTrade, error)

func newCloseCommand(rt *runtime, use, short string, settle settleFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TRADE_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closed, err := settle(rt.sim, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printClosed(cmd, rt, closed)
			return nil
		},
	}
}

func newSettleCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "close TRADE_ID OUTCOME",
		Short: "Close a trade with an outcome (profit, tp, loss, sl)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, ok := domain.ParseOutcome(args[1])
			if !ok {
				return fmt.Errorf("%w: unknown outcome %q", ports.ErrInvalidTradeInput, args[1])
			}
			closed, err := rt.sim.SettleTrade(cmd.Context(), args[0], outcome)
			if err != nil {
				return err
			}
			printClosed(cmd, rt, closed)
			return nil
		},
	}
}

func printClosed(cmd *cobra.Command, rt *runtime, closed *domain.ClosedTrade) {
	fmt.Fprintf(cmd.OutOrStdout(), "Closed %s %s (%s): pnl %s, balance %.2f\n",
		closed.ID, closed.Pair, closed.Outcome, formatSigned(closed.PnL), rt.sim.Balance())
}

func newOpenCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "List open trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := rt.sim.Snapshot()
			out := cmd.OutOrStdout()
			if len(snap.OpenTrades) == 0 {
				fmt.Fprintln(out, "No open trades")
			} else {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tPAIR\tENTRY\tLEV\tPOSITION\tTP%\tSL%\tFEE\tOPENED")
				for _, t := range snap.OpenTrades {
					fmt.Fprintf(w, "%s\t%s\t%.2f\tx%d\t%.2f\t%s\t%s\t%.2f\t%s\n",
						t.ID, t.Pair, t.EntryAmount, t.Leverage, t.PositionSize,
						formatPercent(t.TPPercentage), formatPercent(t.SLPercentage), t.Fee,
						t.Timestamp.Local().Format(timeLayout))
				}
				w.Flush()
			}
			fmt.Fprintf(out, "Locked %.2f, available %.2f\n", snap.LockedAmount, snap.AvailableBalance)
			return nil
		},
	}
}

func newHistoryCommand(rt *runtime) *cobra.Command {
	var csvFile string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List closed trades, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trades := rt.sim.ClosedTrades()
			out := cmd.OutOrStdout()

			switch csvFile {
			case "":
			case "-":
				return utils.WriteClosedTradesCSV(out, trades)
			default:
				if err := utils.WriteClosedTradesCSVFile(csvFile, trades); err != nil {
					return fmt.Errorf("failed to export history: %w", err)
				}
				fmt.Fprintf(out, "Exported %d trades to %s\n", len(trades), csvFile)
				return nil
			}

			if len(trades) == 0 {
				fmt.Fprintln(out, "No closed trades")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPAIR\tOUTCOME\tENTRY\tLEV\tFEE\tPNL\tDURATION\tCLOSED")
			for _, t := range trades {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\tx%d\t%.2f\t%s\t%s\t%s\n",
					t.ID, t.Pair, t.Outcome, t.EntryAmount, t.Leverage, t.Fee, formatSigned(t.PnL),
					t.CloseTimestamp.Sub(t.Timestamp).Round(time.Second),
					t.CloseTimestamp.Local().Format(timeLayout))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&csvFile, "csv", "", "Write the history as CSV to FILE (- for stdout)")
	return cmd
}

func newClearCommand(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all open and closed trades (the balance is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear trade history without --yes")
			}
			rt.sim.ClearHistory(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Trade history cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every trade")
	return cmd
}

// parseAmount returns NaN for unparsable input so that trade validation
// reports it like any other non-numeric amount.
func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatSigned(f float64) string {
	return fmt.Sprintf("%+.2f", f)
}
