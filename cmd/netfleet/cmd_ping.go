package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/netfleet/netfleet/pkg/cli"
	"github.com/netfleet/netfleet/pkg/fleet"
)

var (
	pingDevices []string
	pingTimeout time.Duration
	pingJSON    bool
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe reachability of the fleet",
	Long: `Probe TCP reachability of every targeted device's management address
concurrently and report per-device up/down state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := app.dispatcher.Ping(context.Background(), pingDevices, pingTimeout)
		if err != nil {
			return err
		}

		if pingJSON {
			return json.NewEncoder(os.Stdout).Encode(resp)
		}

		table := cli.NewTable("DEVICE", "STATE", "DETAIL")
		for _, r := range resp.Results {
			if r.OK() {
				status := r.Payload.(fleet.PingStatus)
				table.Row(r.Device, cli.Green("up"), fmt.Sprintf("%s rtt=%s", status.Address, status.RTT))
			} else {
				table.Row(r.Device, cli.Red("down"), r.Error.Message)
			}
		}
		table.Flush()
		printSummary(resp)
		return nil
	},
}

func init() {
	pingCmd.Flags().StringSliceVarP(&pingDevices, "devices", "d", nil, "Target devices (default: all)")
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", fleet.PingTimeout, "Per-device probe timeout")
	pingCmd.Flags().BoolVar(&pingJSON, "json", false, "JSON output")
}
