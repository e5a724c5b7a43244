package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxgate/risk"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run the sizing calculator offline",
	Long: `Compute position sizes and stop-loss prices without touching the account.

Subcommands:
  volume - Lots to trade for a balance, risk percent and stop distance
  stop   - Stop-loss price for a direction, reference price and stop distance

Examples:
  fxgate calc volume --balance 10000 --risk 2 --stop 20 --symbol EURUSD
  fxgate calc stop --direction BUY --price 1950 --stop 50`,
}

var calcVolumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Compute a risk-based position size",
	Args:  cobra.NoArgs,
	RunE:  runCalcVolume,
}

var calcStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Compute a stop-loss price",
	Args:  cobra.NoArgs,
	RunE:  runCalcStop,
}

var (
	calcBalance   float64
	calcRisk      float64
	calcStopPips  float64
	calcSymbol    string
	calcDirection string
	calcPrice     float64
)

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.AddCommand(calcVolumeCmd)
	calcCmd.AddCommand(calcStopCmd)

	calcCmd.PersistentFlags().Float64Var(&calcStopPips, "stop", 0, "stop-loss distance in pips (required)")
	calcCmd.MarkPersistentFlagRequired("stop")

	calcVolumeCmd.Flags().Float64Var(&calcBalance, "balance", 0, "account balance (required)")
	calcVolumeCmd.Flags().Float64Var(&calcRisk, "risk", 1, "risk percent of balance")
	calcVolumeCmd.Flags().StringVar(&calcSymbol, "symbol", "XAUUSD", "instrument symbol")
	calcVolumeCmd.MarkFlagRequired("balance")

	calcStopCmd.Flags().StringVar(&calcDirection, "direction", "BUY", "BUY or SELL")
	calcStopCmd.Flags().Float64Var(&calcPrice, "price", 0, "reference price: ask for BUY, bid for SELL (required)")
	calcStopCmd.MarkFlagRequired("price")
}

func runCalcVolume(cmd *cobra.Command, args []string) error {
	volume, err := risk.ComputeVolume(calcBalance, calcRisk, calcStopPips, calcSymbol)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Symbol", "Balance", "Risk %", "Risk Amount", "Stop (pips)", "Pip Value", "Volume"})
	t.AppendRow(table.Row{
		calcSymbol,
		fmt.Sprintf("%.2f", calcBalance),
		calcRisk,
		fmt.Sprintf("%.2f", calcBalance*calcRisk/100),
		calcStopPips,
		risk.PipValue(calcSymbol),
		fmt.Sprintf("%.2f", volume),
	})
	t.Render()
	return nil
}

func runCalcStop(cmd *cobra.Command, args []string) error {
	var side risk.Side
	switch strings.ToUpper(calcDirection) {
	case "BUY":
		side = risk.Buy
	case "SELL":
		side = risk.Sell
	default:
		return fmt.Errorf("invalid direction %q: use BUY or SELL", calcDirection)
	}

	price := risk.StopLossPrice(side, calcPrice, calcStopPips)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Direction", "Reference", "Stop (pips)", "Stop Loss"})
	t.AppendRow(table.Row{side.String(), calcPrice, calcStopPips, fmt.Sprintf("%.2f", price)})
	t.Render()
	return nil
}
