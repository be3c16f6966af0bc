package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driving"
)

// WatchFunc blocks until ctx is done, calling onChange whenever the raw
// archive for date appears or changes.
type WatchFunc func(ctx context.Context, date string, onChange func()) error

var (
	syncDate         string
	syncNoEmbeddings bool
	syncWatch        bool
	syncModel        string
)

// archiveWatch is injected by main for sync --watch.
var archiveWatch WatchFunc

// progressInterval is how often sync progress is polled.
var progressInterval = 500 * time.Millisecond

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import an archive day",
	Long: `Reads the raw arXiv archive for a day, normalises the records,
computes passage embeddings, stores the papers locally and upserts them to
Supabase when SUPABASE_URL and SUPABASE_SERVICE_KEY are set.

With --watch, keeps running and re-syncs whenever the day's raw file is
created or rewritten.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncDate, "date", "", "archive day (YYYYMMDD, default today UTC)")
	syncCmd.Flags().BoolVar(&syncNoEmbeddings, "no-embeddings", false, "skip embedding computation")
	syncCmd.Flags().StringVar(&syncModel, "embed-model", "", "embedding model to use instead of embedding.model")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "re-sync when the archive file changes")
	syncStatusCmd.Flags().StringVar(&syncDate, "date", "", "archive day (YYYYMMDD, default today UTC)")
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

// SetWatch injects the archive watcher used by sync --watch.
func SetWatch(fn WatchFunc) {
	archiveWatch = fn
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ctx := commandContext(cmd)
	date := syncDate
	if date == "" {
		date = domain.Today()
	}
	opts := domain.SyncOptions{
		Date:           date,
		WithEmbeddings: !syncNoEmbeddings,
		EmbeddingModel: syncModel,
	}

	if !syncWatch {
		return syncOnce(ctx, cmd, syncService, opts)
	}

	if archiveWatch == nil {
		return errors.New("archive watching not configured")
	}
	if err := domain.ValidateDate(date); err != nil {
		return err
	}

	// An initial pass picks up a file that already exists.
	if err := syncOnce(ctx, cmd, syncService, opts); err != nil {
		cmd.PrintErrf("Sync failed: %v\n", err)
	}

	cmd.Printf("Watching archive for %s (Ctrl+C to stop)...\n", date)
	return archiveWatch(ctx, date, func() {
		if err := syncOnce(ctx, cmd, syncService, opts); err != nil {
			cmd.PrintErrf("Sync failed: %v\n", err)
		}
	})
}

func syncOnce(ctx context.Context, cmd *cobra.Command, svc driving.SyncService, opts domain.SyncOptions) error {
	cmd.Printf("Synchronising %s...\n", opts.Date)

	run, err := syncWithProgress(ctx, cmd, svc, opts)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printSyncRun(cmd, run)
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	svc driving.SyncService,
	opts domain.SyncOptions,
) (*domain.SyncRun, error) {
	type result struct {
		run *domain.SyncRun
		err error
	}
	done := make(chan result, 1)
	go func() {
		run, err := svc.Sync(ctx, opts)
		done <- result{run, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastStage := ""
	for {
		select {
		case r := <-done:
			if lastStage != "" {
				cmd.Println()
			}
			return r.run, r.err
		case <-ticker.C:
			status := svc.Status()
			if status.Running && status.Stage != lastStage {
				cmd.Printf("\r%s... %d papers", status.Stage, status.PapersProcessed)
				lastStage = status.Stage
			}
		}
	}
}

func printSyncRun(cmd *cobra.Command, run *domain.SyncRun) {
	if run == nil {
		return
	}

	switch run.Status {
	case domain.SyncRunSkipped:
		cmd.Printf("No papers for %s, nothing to do.\n", run.Date)
		return
	case domain.SyncRunFailed:
		cmd.Printf("Sync of %s failed: %s\n", run.Date, run.Error)
		return
	}

	cmd.Printf("Synced %d papers for %s in %s.\n", run.Papers, run.Date, run.Duration().Round(time.Millisecond))
	if run.EmbeddingDim > 0 {
		cmd.Printf("  Embeddings: %s (dim=%d)\n", run.EmbeddingModel, run.EmbeddingDim)
	}
	if run.Published > 0 {
		cmd.Printf("  Published: %d\n", run.Published)
	}
}

// printLastRun shows the most recent run for date, if any.
func printLastRun(cmd *cobra.Command, date string) error {
	run, err := syncService.LastRun(commandContext(cmd), date)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("%s has not been synced.\n", date)
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Printf("Last sync of %s: %s at %s\n", date, run.Status, run.StartedAt.Local().Format(time.DateTime))
	printSyncRun(cmd, run)
	return nil
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last sync of an archive day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if syncService == nil {
			return errors.New("sync service not configured")
		}
		date := syncDate
		if date == "" {
			date = domain.Today()
		}
		return printLastRun(cmd, date)
	},
}
