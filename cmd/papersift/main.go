// Command papersift filters and ranks arXiv papers with boolean queries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/papersift/internal/adapters/driven/archive"
	"github.com/custodia-labs/papersift/internal/adapters/driving/cli"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	cli.SetWatch(watchArchive)

	if err := cli.Execute(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// watchArchive watches the archive root resolved by bootstrap.
func watchArchive(ctx context.Context, date string, onChange func()) error {
	if archiveRoot == "" {
		return errors.New("archive directory not resolved")
	}
	src, err := archive.NewSource(archiveRoot)
	if err != nil {
		return err
	}
	defer src.Close()

	return archive.NewWatcher(src, date).Run(ctx, onChange)
}
