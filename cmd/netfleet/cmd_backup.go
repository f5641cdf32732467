package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/netfleet/netfleet/pkg/audit"
	"github.com/netfleet/netfleet/pkg/cli"
	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/fleet"
)

var (
	backupDevices []string
	backupDir     string
	backupTimeout time.Duration
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up running configurations across the fleet",
	Long: `Fetch the running configuration from every targeted device in parallel
and write one file per device under a timestamped directory.

Example:
  netfleet backup --dir /var/backups/netfleet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		event := audit.NewEvent(currentUser(), "backup").WithTargets(backupDevices)

		resp, err := app.dispatcher.Run(context.Background(), command.GetRunningConfig, backupDevices, fleet.Options{
			Timeout: backupTimeout,
		})
		if err != nil {
			audit.Log(event.WithError(err))
			return err
		}
		audit.Log(event.WithResponse(resp))

		dir := filepath.Join(backupDir, time.Now().Format("20060102_150405"))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating backup directory: %w", err)
		}

		for _, r := range resp.Results {
			if !r.OK() {
				fmt.Printf("%s %s: %s\n", cli.DotPad(r.Device, 32), cli.Red("failed"), r.Error.Message)
				continue
			}
			path := filepath.Join(dir, r.Device+".cfg")
			if err := os.WriteFile(path, []byte(configText(r.Payload)), 0600); err != nil {
				fmt.Printf("%s %s: %v\n", cli.DotPad(r.Device, 32), cli.Red("write failed"), err)
				continue
			}
			fmt.Printf("%s %s -> %s\n", cli.DotPad(r.Device, 32), cli.Green("saved"), path)
		}
		printSummary(resp)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringSliceVarP(&backupDevices, "devices", "d", nil, "Target devices (default: all)")
	backupCmd.Flags().StringVar(&backupDir, "dir", "backups", "Backup output directory")
	backupCmd.Flags().DurationVar(&backupTimeout, "timeout", 2*time.Minute, "Per-device timeout (configs can be large)")
}

// configText renders a backup payload to file contents. Configs normally
// pass through as raw text; structured payloads (SONiC CONFIG_DB dumps)
// are written as JSON.
func configText(payload interface{}) string {
	if s, ok := payload.(string); ok {
		return s
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(out)
}
