package main

import (
	"github.com/spf13/cobra"

	"github.com/netfleet/netfleet/pkg/cli"
	"github.com/netfleet/netfleet/pkg/command"
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List canonical operations and their vendor command mappings",
	Long: `List every canonical operation and, per vendor, the literal command it
translates to. Combinations not listed here fail with
unsupported-operation when targeted.`,
	Run: func(cmd *cobra.Command, args []string) {
		table := cli.NewTable("OPERATION", "VENDOR", "COMMAND")
		for _, m := range command.Mappings() {
			table.Row(string(m.Operation), string(m.Vendor), m.Template)
		}
		table.Flush()
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the device inventory",
	Run: func(cmd *cobra.Command, args []string) {
		table := cli.NewTable("NAME", "VENDOR", "ADDRESS", "TRANSPORT")
		for _, d := range app.inv.All() {
			table.Row(d.Name, string(d.Vendor), d.Addr(), string(d.Transport))
		}
		table.Flush()
	},
}
