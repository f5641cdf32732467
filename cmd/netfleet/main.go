// Netfleet - Multi-vendor fleet query tool
//
// A CLI for running canonical read operations (version, interfaces, routes,
// LLDP neighbors, ...) across a fleet of heterogeneous network devices.
// Each operation is translated to the correct vendor syntax per device and
// executed concurrently against every target; one slow or broken device
// never blocks the rest.
//
//	netfleet run get-version                      # all devices
//	netfleet run get-interfaces -d leaf1,leaf2 -i Ethernet0
//	netfleet ping                                 # fleet reachability
//	netfleet backup --dir /var/backups/netfleet   # running-config snapshot
//	netfleet operations                           # supported op/vendor matrix
package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/netfleet/netfleet/pkg/audit"
	"github.com/netfleet/netfleet/pkg/fleet"
	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
	"github.com/netfleet/netfleet/pkg/version"
)

var (
	// Global option flags
	inventoryPath string
	verbose       bool
	askPass       bool

	// Global state, initialized in PersistentPreRunE
	app struct {
		inv        *inventory.Inventory
		registry   *fleet.Registry
		pool       *fleet.Pool
		dispatcher *fleet.Dispatcher
		audit      *audit.FileLogger
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netfleet",
	Short:             "Multi-vendor fleet query tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Netfleet runs canonical read operations across a fleet of network
devices, translating each operation to the right vendor syntax and executing
against all targets in parallel.

  netfleet run <operation> [-d dev1,dev2] [--timeout 30s]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsInit(cmd) {
			return nil
		}

		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		if inventoryPath == "" {
			inventoryPath = os.Getenv("NETFLEET_INVENTORY")
		}
		if inventoryPath == "" {
			inventoryPath = "devices.yaml"
		}

		inv, err := inventory.Load(inventoryPath)
		if err != nil {
			return fmt.Errorf("loading inventory: %w", err)
		}

		if askPass {
			if err := promptMissingPasswords(inv); err != nil {
				return err
			}
		}

		app.inv = inv
		app.registry = fleet.NewRegistry(inv)
		app.pool = fleet.NewPool(nil)
		app.dispatcher = fleet.NewDispatcher(app.registry, app.pool, nil)

		auditPath := filepath.Join(filepath.Dir(inventoryPath), "audit.log")
		auditLogger, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			app.audit = auditLogger
			audit.SetDefaultLogger(auditLogger)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.pool != nil {
			app.pool.Close()
		}
		if app.audit != nil {
			app.audit.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "f", "", "Device inventory file (default devices.yaml, or $NETFLEET_INVENTORY)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&askPass, "ask-pass", false, "Prompt for a password for devices whose credential env var is unset")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(operationsCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
}

// skipsInit reports whether a command runs without inventory or fleet state.
func skipsInit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion", "operations":
		return true
	}
	return cmd.Parent() != nil && cmd.Parent().Name() == "completion"
}

// promptMissingPasswords asks once for a shared password and applies it to
// every device whose credential reference did not resolve.
func promptMissingPasswords(inv *inventory.Inventory) error {
	var missing []*inventory.Device
	for _, d := range inv.All() {
		if d.Password == "" && d.Transport != inventory.TransportSNMP {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Password (%d devices without resolved credentials): ", len(missing))
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	for _, d := range missing {
		d.Password = string(raw)
	}
	return nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("netfleet " + version.Info())
	},
}
