package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netfleet/netfleet/pkg/audit"
	"github.com/netfleet/netfleet/pkg/cli"
	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/fleet"
)

var (
	errorsDevices   []string
	errorsThreshold int64
	errorsTimeout   time.Duration
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Find interfaces with error counters above a threshold",
	Long: `Collect interface error counters across the fleet and report every
interface whose total error count exceeds the threshold.

Example:
  netfleet errors --threshold 1000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		event := audit.NewEvent(currentUser(), "errors").WithTargets(errorsDevices)

		resp, err := app.dispatcher.Run(context.Background(), command.GetInterfaceCounters, errorsDevices, fleet.Options{
			Timeout: errorsTimeout,
		})
		if err != nil {
			audit.Log(event.WithError(err))
			return err
		}
		audit.Log(event.WithResponse(resp))

		table := cli.NewTable("DEVICE", "INTERFACE", "ALIGN", "FCS", "OUTPUT", "INPUT", "TOTAL")
		flagged := 0
		for _, r := range resp.Results {
			if !r.OK() {
				fmt.Printf("%s %s: %s\n", cli.DotPad(r.Device, 32), cli.Red(string(r.Error.Kind)), r.Error.Message)
				continue
			}
			high := fleet.HighErrorInterfaces(r.Payload, errorsThreshold)
			if high == nil {
				if _, raw := r.Payload.(string); raw {
					fmt.Printf("%s %s\n", cli.DotPad(r.Device, 32), cli.Yellow("output not parsed, skipped"))
				}
				continue
			}
			for _, c := range high {
				flagged++
				table.Row(
					r.Device,
					c.Interface,
					fmt.Sprintf("%d", c.AlignErrors),
					fmt.Sprintf("%d", c.FCSErrors),
					fmt.Sprintf("%d", c.OutputErrors),
					fmt.Sprintf("%d", c.InputErrors),
					cli.Red(fmt.Sprintf("%d", c.Total())),
				)
			}
		}
		table.Flush()
		if flagged == 0 {
			fmt.Printf("no interfaces above %d total errors\n", errorsThreshold)
		}
		printSummary(resp)
		return nil
	},
}

func init() {
	errorsCmd.Flags().StringSliceVarP(&errorsDevices, "devices", "d", nil, "Target devices (default: all)")
	errorsCmd.Flags().Int64Var(&errorsThreshold, "threshold", 0, "Minimum total error count to report")
	errorsCmd.Flags().DurationVar(&errorsTimeout, "timeout", fleet.DefaultTimeout, "Per-device timeout")
}
