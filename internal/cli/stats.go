package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tradeSimulator/internal/analytics"
)

func newStatsCommand(rt *runtime) *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize realized performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := analytics.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}

			m := rt.sim.Stats()
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Trades:\t%d (%d won, %d lost)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
			fmt.Fprintf(w, "Win rate:\t%.1f%%\n", m.WinRate)
			fmt.Fprintf(w, "Total PnL:\t%s\n", formatSigned(m.TotalPnL))
			fmt.Fprintf(w, "Last 7 days:\t%s\n", formatSigned(m.PnLLast7Days))
			fmt.Fprintf(w, "Last 30 days:\t%s\n", formatSigned(m.PnLLast30Days))
			fmt.Fprintf(w, "Fees paid:\t%.2f\n", m.TotalFees)
			fmt.Fprintf(w, "Average win / loss:\t%s / %s\n", formatSigned(m.AverageWin), formatSigned(m.AverageLoss))
			fmt.Fprintf(w, "Profit factor:\t%.2f\n", m.ProfitFactor)
			fmt.Fprintf(w, "Max drawdown:\t%.2f%%\n", m.MaxDrawdown*100)
			fmt.Fprintf(w, "Streaks:\t%d wins, %d losses\n", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
			fmt.Fprintf(w, "Average duration:\t%s\n", m.AverageTradeDuration.Round(time.Second))
			if err := w.Flush(); err != nil {
				return err
			}

			periods := rt.sim.PnLByPeriod(tf)
			if len(periods) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PERIOD\tTRADES\tPNL")
			for _, p := range periods {
				fmt.Fprintf(w, "%s\t%d\t%s\n", p.Period, p.Trades, formatSigned(p.PnL))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", string(analytics.Daily), "Group PnL by daily, weekly or monthly")
	return cmd
}
