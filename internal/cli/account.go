package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeSimulator/internal/domain"
)

func newBalanceCommand(rt *runtime) *cobra.Command {
	var reset, credit float64

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the balance, or reset or credit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			if flags.Changed("reset") && flags.Changed("credit") {
				return fmt.Errorf("--reset and --credit cannot be combined")
			}
			if flags.Changed("reset") {
				if reset < 0 {
					return fmt.Errorf("balance cannot be negative: %.2f", reset)
				}
				if err := rt.sim.ResetBalance(ctx, reset); err != nil {
					return err
				}
			}
			if flags.Changed("credit") {
				if _, err := rt.sim.CreditBalance(ctx, credit); err != nil {
					return err
				}
			}

			snap := rt.sim.Snapshot()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Balance:\t%.2f\n", snap.Balance)
			fmt.Fprintf(w, "Locked:\t%.2f\n", snap.LockedAmount)
			fmt.Fprintf(w, "Available:\t%.2f\n", snap.AvailableBalance)
			return w.Flush()
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&reset, "reset", 0, "Set the balance to AMOUNT")
	flags.Float64Var(&credit, "credit", 0, "Add a signed amount to the balance")
	return cmd
}

func newSettingsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change trading settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSettings(cmd.OutOrStdout(), rt.sim.Settings())
		},
	}
	cmd.AddCommand(newSettingsSetCommand(rt), newSettingsResetCommand(rt))
	return cmd
}

func newSettingsSetCommand(rt *runtime) *cobra.Command {
	var values domain.Settings

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save settings and reset the balance to the initial balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.SettingsPatch
			flags := cmd.Flags()
			if flags.Changed("initial-balance") {
				patch.InitialBalance = &values.InitialBalance
			}
			if flags.Changed("leverage") {
				patch.DefaultLeverage = &values.DefaultLeverage
			}
			if flags.Changed("pl-percentage") {
				patch.ProfitLossPercentage = &values.ProfitLossPercentage
			}
			if flags.Changed("maker-fee") {
				patch.MakerFee = &values.MakerFee
			}
			if flags.Changed("taker-fee") {
				patch.TakerFee = &values.TakerFee
			}
			if patch.IsEmpty() {
				return fmt.Errorf("no settings given; see --help")
			}

			saved, err := rt.sim.SaveSettings(cmd.Context(), patch)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printSettings(out, saved); err != nil {
				return err
			}
			fmt.Fprintf(out, "Balance reset to %.2f\n", rt.sim.Balance())
			return nil
		},
	}

	defaults := domain.DefaultSettings()
	flags := cmd.Flags()
	flags.Float64Var(&values.InitialBalance, "initial-balance", defaults.InitialBalance, "Initial balance")
	flags.IntVar(&values.DefaultLeverage, "leverage", defaults.DefaultLeverage, "Default leverage (1, 2, 5, 10, 20, 50, 100)")
	flags.Float64Var(&values.ProfitLossPercentage, "pl-percentage", defaults.ProfitLossPercentage, "Default take-profit / stop-loss percentage")
	flags.Float64Var(&values.MakerFee, "maker-fee", defaults.MakerFee, "Maker fee percentage")
	flags.Float64Var(&values.TakerFee, "taker-fee", defaults.TakerFee, "Taker fee percentage")
	return cmd
}

func newSettingsResetCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings (the balance is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSettings(cmd.OutOrStdout(), rt.sim.ResetSettings(cmd.Context()))
		},
	}
}

func printSettings(out io.Writer, s domain.Settings) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Initial balance:\t%.2f\n", s.InitialBalance)
	fmt.Fprintf(w, "Default leverage:\tx%d\n", s.DefaultLeverage)
	fmt.Fprintf(w, "Profit/loss:\t%s%%\n", formatPercent(s.ProfitLossPercentage))
	fmt.Fprintf(w, "Maker fee:\t%s%%\n", formatPercent(s.MakerFee))
	fmt.Fprintf(w, "Taker fee:\t%s%%\n", formatPercent(s.TakerFee))
	return w.Flush()
}
