package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netfleet/netfleet/pkg/audit"
	"github.com/netfleet/netfleet/pkg/cli"
)

var (
	auditOperation string
	auditUser      string
	auditLimit     int
	auditFailures  bool
	auditSince     time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the local audit log",
	Long: `Show recent fleet operations recorded in the audit log, newest last.

Example:
  netfleet audit --operation GetVersion --failures --since 24h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.audit == nil {
			return fmt.Errorf("audit logging is not configured")
		}
		filter := audit.Filter{
			User:        auditUser,
			Operation:   auditOperation,
			FailureOnly: auditFailures,
			Limit:       auditLimit,
		}
		if auditSince > 0 {
			filter.StartTime = time.Now().Add(-auditSince)
		}
		events, err := app.audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("no matching audit events")
			return nil
		}

		t := cli.NewTable("TIME", "USER", "OPERATION", "TARGETS", "RESULT", "DURATION")
		for _, e := range events {
			result := cli.Green("ok")
			if e.Error != "" {
				result = cli.Red("error")
			} else if e.Summary.Failed > 0 {
				result = cli.Yellow(fmt.Sprintf("%d/%d failed", e.Summary.Failed, e.Summary.Total))
			}
			t.Row(
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.User,
				e.Operation,
				fmt.Sprintf("%d", len(e.Targets)),
				result,
				e.Duration.Round(time.Millisecond).String(),
			)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditOperation, "operation", "", "Filter by operation name")
	auditCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum events to show")
	auditCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")
	auditCmd.Flags().DurationVar(&auditSince, "since", 0, "Only events newer than this age (e.g. 24h)")
}
