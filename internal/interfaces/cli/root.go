// Package cli implements syncctl, the operator command line for the sync
// engine. Commands run the orchestrator in-process against the configured
// stores, so they work while the API server is down.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// Engine is the orchestrator surface the commands use
type Engine interface {
	SyncAllSuppliers(ctx context.Context, trigger inventory.SyncTrigger) []inventorysync.SyncResult
	SyncSupplier(ctx context.Context, supplierID integration.SupplierID, trigger inventory.SyncTrigger) (*inventory.InventorySyncLog, error)
	SyncHighPriorityVariants(ctx context.Context) (*inventorysync.PrioritySyncResult, error)
	HealthCheck(ctx context.Context) map[integration.SupplierID]bool
	Status(ctx context.Context) (*inventorysync.StatusReport, error)
	History(ctx context.Context, limit int) ([]inventory.InventorySyncLog, error)
	RecentChanges(ctx context.Context, limit int) ([]inventory.InventoryChange, error)
	InventoryBySKU(ctx context.Context, sku string) (*inventorysync.SKUInventory, error)
}

// EngineFactory builds the engine for one command. The returned func
// releases it.
type EngineFactory func(ctx context.Context, opts *RootOptions) (Engine, func(), error)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	factory EngineFactory
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the syncctl root command
func NewRootCommand(factory EngineFactory) *cobra.Command {
	opts := &RootOptions{factory: factory}

	cmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Operate the supplier inventory sync",
		Long: `syncctl triggers supplier syncs and inspects their results.

Configuration is read the same way as the API server: config.toml,
a .env file and PRINTSHOP_ environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewChangesCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withEngine builds the engine, runs fn and releases it
func withEngine(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, e Engine, out *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	engine, release, err := opts.factory(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize", err)
	}
	defer release()

	return fn(ctx, engine, &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	})
}
