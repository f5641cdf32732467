package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/netfleet/netfleet/pkg/audit"
	"github.com/netfleet/netfleet/pkg/cli"
	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/fleet"
)

var (
	runDevices   []string
	runTimeout   time.Duration
	runLimit     int
	runInterface string
	runJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run <operation>",
	Short: "Run a canonical operation across the fleet",
	Long: `Run a canonical operation against the targeted devices.

Targets default to every device in the inventory. The operation is
translated per vendor and executed against all targets in parallel; the
fleet call takes roughly as long as its slowest device.

Examples:
  netfleet run get-version
  netfleet run get-interfaces -d leaf1-ny,leaf2-ny -i Ethernet0
  netfleet run get-routes --timeout 10s --limit 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, ok := command.ParseOperation(args[0])
		if !ok {
			return fmt.Errorf("unknown operation '%s' (known: %s)", args[0], knownOperations())
		}

		params := command.Params{}
		if runInterface != "" {
			params[command.ParamInterface] = runInterface
		}

		app.dispatcher.Limit = runLimit
		event := audit.NewEvent(currentUser(), string(op)).WithTargets(runDevices)

		resp, err := app.dispatcher.Run(context.Background(), op, runDevices, fleet.Options{
			Timeout: runTimeout,
			Params:  params,
		})
		if err != nil {
			audit.Log(event.WithError(err))
			return err
		}
		audit.Log(event.WithResponse(resp))

		if runJSON {
			return json.NewEncoder(os.Stdout).Encode(resp)
		}
		printResponse(resp)
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVarP(&runDevices, "devices", "d", nil, "Target devices (default: all)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", fleet.DefaultTimeout, "Per-device timeout")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Max devices in flight at once (0 = unbounded)")
	runCmd.Flags().StringVarP(&runInterface, "interface", "i", "", "Interface name parameter (for interface operations)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "JSON output")
}

// printResponse renders a fleet response as per-device blocks plus a
// summary line.
func printResponse(resp *fleet.Response) {
	for _, r := range resp.Results {
		if r.OK() {
			fmt.Printf("%s %s (%s)\n", cli.DotPad(r.Device, 32), cli.Green("success"), r.Elapsed.Round(time.Millisecond))
			fmt.Println(indent(renderPayload(r.Payload), "  "))
		} else {
			fmt.Printf("%s %s (%s)\n", cli.DotPad(r.Device, 32), cli.Red(string(r.Error.Kind)), r.Elapsed.Round(time.Millisecond))
			fmt.Println(indent(r.Error.Message, "  "))
		}
	}
	printSummary(resp)
}

func printSummary(resp *fleet.Response) {
	s := resp.Summary
	line := fmt.Sprintf("%d devices: %d succeeded, %d failed", s.Total, s.Succeeded, s.Failed)
	if s.Unreachable > 0 {
		line += fmt.Sprintf(" (%d unreachable)", s.Unreachable)
	}
	line += fmt.Sprintf(" in %s", resp.Elapsed.Round(time.Millisecond))
	if s.Failed > 0 {
		fmt.Println(cli.Yellow(line))
	} else {
		fmt.Println(cli.Bold(line))
	}
}

// renderPayload prints a raw string as-is and anything structured as JSON.
func renderPayload(payload interface{}) string {
	if s, ok := payload.(string); ok {
		return strings.TrimRight(s, "\n")
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(out)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func knownOperations() string {
	ops := command.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}
