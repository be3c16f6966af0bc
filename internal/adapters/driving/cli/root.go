// Package cli implements the papersift command line with cobra.
//
// Services are injected by main through SetServices, or lazily through a
// Bootstrap function that builds them from the resolved directories once the
// persistent flags are parsed.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papersift/internal/core/ports/driving"
	"github.com/custodia-labs/papersift/internal/logger"
)

// version is set by SetVersion from main (ldflags).
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Injected services.
var (
	searchService   driving.SearchService
	syncService     driving.SyncService
	paperService    driving.PaperService
	settingsService driving.SettingsService
)

// Paths are the directories chosen on the command line. Empty values mean
// the defaults under ~/.papersift.
type Paths struct {
	ConfigDir string
	DataDir   string
}

// Services groups the driving ports the commands use.
type Services struct {
	Search   driving.SearchService
	Sync     driving.SyncService
	Paper    driving.PaperService
	Settings driving.SettingsService
}

// BootstrapFunc builds services for the given paths and returns a cleanup.
type BootstrapFunc func(ctx context.Context, paths Paths) (*Services, func(), error)

var (
	bootstrap BootstrapFunc
	cleanup   func()
)

// skipServices marks commands that run without services.
const skipServices = "papersift/skip-services"

var rootCmd = &cobra.Command{
	Use:   "papersift",
	Short: "Filter and rank arXiv papers with boolean queries",
	Long: `papersift syncs daily arXiv archives into a local store and ranks
them with boolean queries such as:

  papersift search '("graph neural" OR diffusion) AND NOT survey'

Terms are combined with AND, OR, NOT (or &&, ||, !), parentheses and
quotes; author:"Name" matches the author list. Matching papers are ranked with BM25, optionally blended
with embedding similarity.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.papersift)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.papersift/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	searchService = s.Search
	syncService = s.Sync
	paperService = s.Paper
	settingsService = s.Settings
}

// SetBootstrap registers the function that builds services after flag
// parsing. It is not called when services were injected with SetServices.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || servicesReady() || cmd.Annotations[skipServices] == "true" {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), Paths{ConfigDir: configDir, DataDir: dataDir})
	if err != nil {
		return err
	}
	SetServices(*services)
	cleanup = done
	return nil
}

func teardown() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

func servicesReady() bool {
	return searchService != nil || syncService != nil || paperService != nil || settingsService != nil
}

// commandContext returns the command's context, or Background when the
// command runs outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
