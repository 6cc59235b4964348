package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
)

const defaultListLimit = 20

var errSyncSkipped = errors.New("skipped: sync already in progress")

// NewSyncCommand creates the sync command
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var priority bool
	cmd := &cobra.Command{
		Use:   "sync [supplier]",
		Short: "Run a full sync of one supplier or of all suppliers",
		Long: `Run a full sync now and wait for it to finish.

The supplier may be given by id or alias ("sanmar", "S&S", "AS Colour").
Without a supplier every configured supplier is synced. With --priority
only the high-priority variants are refreshed, the same incremental pass
the scheduler runs hourly. The command exits non-zero when any run failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if priority && len(args) == 1 {
				return NewExitError(ExitCommandError, "--priority syncs every supplier and takes no supplier argument")
			}
			return withEngine(cmd, rootOpts, func(ctx context.Context, e Engine, out *OutputFormatter) error {
				switch {
				case priority:
					return runSyncPriority(ctx, e, out)
				case len(args) == 1:
					return runSyncOne(ctx, e, out, args[0])
				default:
					return runSyncAll(ctx, e, out)
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&priority, "priority", "p", false, "sync only high-priority variants")
	return cmd
}

func runSyncPriority(ctx context.Context, e Engine, out *OutputFormatter) error {
	result, err := e.SyncHighPriorityVariants(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "priority sync failed", err)
	}

	results := make([]inventorysync.SyncResult, 0, len(result.Logs)+len(result.Skipped))
	failed := 0
	for _, l := range result.Logs {
		results = append(results, inventorysync.SyncResult{SupplierID: l.SupplierID, Log: l})
		if l.Status != inventory.SyncStatusCompleted {
			failed++
		}
	}
	for _, id := range result.Skipped {
		results = append(results, inventorysync.SyncResult{SupplierID: id, Err: errSyncSkipped})
	}
	t := syncTable(results)
	t.Rows = append(t.Rows, []string{
		"total", "-", strconv.Itoa(result.VariantsSynced) + "/" + strconv.Itoa(result.VariantsChecked),
		strconv.Itoa(result.ChangesDetected), "-", "",
	})
	if err := out.Write(result, t); err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, strconv.Itoa(failed)+" supplier sync(s) failed")
	}
	return nil
}

func runSyncOne(ctx context.Context, e Engine, out *OutputFormatter, raw string) error {
	id := integration.NormalizeSupplierID(raw)
	runLog, err := e.SyncSupplier(ctx, id, inventory.SyncTriggerManual)
	if err != nil {
		return WrapExitError(ExitFailure, "sync "+id.String()+" failed", err)
	}
	if err := out.Write(runLog, syncTable([]inventorysync.SyncResult{{SupplierID: id, Log: runLog}})); err != nil {
		return err
	}
	if runLog.Status != inventory.SyncStatusCompleted {
		return NewExitError(ExitFailure, "sync "+id.String()+" "+string(runLog.Status))
	}
	return nil
}

func runSyncAll(ctx context.Context, e Engine, out *OutputFormatter) error {
	results := e.SyncAllSuppliers(ctx, inventory.SyncTriggerManual)

	type jsonResult struct {
		inventorysync.SyncResult
		Error string `json:"error,omitempty"`
	}
	data := make([]jsonResult, 0, len(results))
	failed := 0
	for _, r := range results {
		jr := jsonResult{SyncResult: r}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		if !r.Succeeded() {
			failed++
		}
		data = append(data, jr)
	}
	if err := out.Write(data, syncTable(results)); err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, strconv.Itoa(failed)+" supplier sync(s) failed")
	}
	return nil
}

func syncTable(results []inventorysync.SyncResult) Table {
	t := Table{Headers: []string{"SUPPLIER", "STATUS", "VARIANTS", "CHANGES", "DURATION", "ERROR"}}
	for _, r := range results {
		row := []string{r.SupplierID.String(), "-", "0", "0", "-", ""}
		if r.Log != nil {
			row[1] = string(r.Log.Status)
			row[2] = strconv.Itoa(r.Log.VariantsSynced)
			row[3] = strconv.Itoa(r.Log.ChangesDetected)
			if r.Log.CompletedAt != nil {
				row[4] = r.Log.CompletedAt.Sub(r.Log.StartedAt).Round(time.Millisecond).String()
			}
			if len(r.Log.Errors) > 0 {
				row[5] = r.Log.Errors[0]
			}
		}
		if r.Err != nil {
			row[5] = r.Err.Error()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// NewHealthCommand creates the health command
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Test the connection to every configured supplier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, e Engine, out *OutputFormatter) error {
				health := e.HealthCheck(ctx)
				ids := make([]integration.SupplierID, 0, len(health))
				for id := range health {
					ids = append(ids, id)
				}
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

				t := Table{Headers: []string{"SUPPLIER", "HEALTHY"}}
				down := 0
				for _, id := range ids {
					if !health[id] {
						down++
					}
					t.Rows = append(t.Rows, []string{id.String(), strconv.FormatBool(health[id])})
				}
				if err := out.Write(health, t); err != nil {
					return err
				}
				if down > 0 {
					return NewExitError(ExitFailure, strconv.Itoa(down)+" supplier(s) unreachable")
				}
				return nil
			})
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last sync of every supplier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, e Engine, out *OutputFormatter) error {
				report, err := e.Status(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to read status", err)
				}
				t := Table{Headers: []string{"SUPPLIER", "NAME", "SYNCING", "LAST STATUS", "LAST SYNC"}}
				for _, s := range report.Suppliers {
					last, at := "never", "-"
					if s.LastSync != nil {
						last = string(s.LastSync.Status)
					}
					if s.LastSyncAt != nil {
						at = s.LastSyncAt.Format(time.RFC3339)
					}
					t.Rows = append(t.Rows, []string{
						s.SupplierID.String(), s.DisplayName, strconv.FormatBool(s.Syncing), last, at,
					})
				}
				return out.Write(report, t)
			})
		},
	}
}

// NewHistoryCommand creates the history command
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, e Engine, out *OutputFormatter) error {
				logs, err := e.History(ctx, limit)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to read history", err)
				}
				results := make([]inventorysync.SyncResult, 0, len(logs))
				for i := range logs {
					results = append(results, inventorysync.SyncResult{SupplierID: logs[i].SupplierID, Log: &logs[i]})
				}
				return out.Write(logs, syncTable(results))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "number of runs to show")
	return cmd
}

// NewChangesCommand creates the changes command
func NewChangesCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "List recently detected stock and price changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, e Engine, out *OutputFormatter) error {
				changes, err := e.RecentChanges(ctx, limit)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to read changes", err)
				}
				t := Table{Headers: []string{"DETECTED", "SUPPLIER", "SKU", "TYPE", "OLD", "NEW"}}
				for _, c := range changes {
					t.Rows = append(t.Rows, []string{
						c.DetectedAt.Format(time.RFC3339), c.SupplierID.String(), c.SKU,
						string(c.ChangeType), c.OldValue, c.NewValue,
					})
				}
				return out.Write(changes, t)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "number of changes to show")
	return cmd
}

// NewLookupCommand creates the lookup command
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <sku>",
		Short: "Show the inventory of one variant across suppliers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(ctx context.Context, e Engine, out *OutputFormatter) error {
				found, err := e.InventoryBySKU(ctx, args[0])
				if errors.Is(err, shared.ErrNotFound) {
					return WrapExitError(ExitFailure, fmt.Sprintf("no inventory for %s (SKU format suggests %s)",
						args[0], integration.DetectSupplier(args[0]).DisplayName()), err)
				}
				if err != nil {
					return WrapExitError(ExitFailure, "lookup "+args[0]+" failed", err)
				}
				t := Table{Headers: []string{"SUPPLIER", "SUPPLIER SKU", "QTY", "PRICE", "PRIMARY", "LAST SYNCED"}}
				for _, s := range found.Suppliers {
					t.Rows = append(t.Rows, []string{
						s.SupplierID.String(), s.SupplierSKU, strconv.Itoa(s.Quantity),
						s.SupplierPrice.StringFixed(2), strconv.FormatBool(s.IsPrimary),
						s.LastSynced.Format(time.RFC3339),
					})
				}
				t.Rows = append(t.Rows, []string{"total", found.Variant.SKU, strconv.Itoa(found.TotalQuantity), "", "", ""})
				return out.Write(found, t)
			})
		},
	}
}
