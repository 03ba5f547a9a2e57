// Package cli implements the nomina command line.
//
// Commands run against driving ports held in package variables. The binary
// installs them through a Bootstrap function that runs after global flags
// are parsed; tests install them directly with SetServices.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
	"github.com/custodia-labs/nomina/internal/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK             = 0
	ExitError          = 1
	ExitUnitNotFound   = 3
	ExitBudgetExceeded = 4
	ExitServiceError   = 5
	ExitCancelled      = 130
)

var (
	errBudgetExceeded = errors.New("budget limit reached; raise budget.limit_tokens or wait for the next UTC day")
	errCancelled      = errors.New("cancelled")
)

// skipBootstrap marks commands that need no services.
const skipBootstrap = "skip-bootstrap"

// version is set at build time.
var version = "dev"

var (
	corpusService   driving.CorpusService
	nameService     driving.NameService
	unitService     driving.UnitService
	orchestrator    driving.Orchestrator
	budgetService   driving.BudgetService
	settingsService driving.SettingsService
)

// Services holds the driving ports the commands run against.
// Any of them may be nil when its configuration is missing.
type Services struct {
	Corpus       driving.CorpusService
	Names        driving.NameService
	Units        driving.UnitService
	Orchestrator driving.Orchestrator
	Budget       driving.BudgetService
	Settings     driving.SettingsService
}

// Options carries the global flags to the bootstrap function.
type Options struct {
	ConfigDir   string
	DataDir     string
	CorpusDir   string
	Provider    string
	MetricsAddr string
}

// Bootstrap builds the services for one invocation. The returned cleanup
// runs after the command finishes.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap  Bootstrap
	cleanup    func()
	globalOpts Options
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nomina",
	Short: "Extract proper names from a verse corpus",
	Long: `nomina extracts persons and places from the units of a
collection/group/unit corpus with an LLM, at most once per unit.

Units whose text cannot hold a proper name are committed without calling
the LLM. Sweeps stop before the daily token budget is exceeded and resume
where they stopped.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output to stderr")
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.nomina)")
	flags.StringVar(&globalOpts.DataDir, "data-dir", "", "database directory (default ~/.nomina/data)")
	flags.StringVar(&globalOpts.CorpusDir, "corpus-dir", "", "corpus directory (overrides corpus.dir)")
	flags.StringVar(&globalOpts.Provider, "provider", "", "LLM provider for this run: ollama, openai or anthropic")
	flags.StringVar(&globalOpts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

// SetBootstrap installs the function that builds services after flag parsing.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version printed by 'nomina version'.
func SetVersion(v string) {
	version = v
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	corpusService = s.Corpus
	nameService = s.Names
	unitService = s.Units
	orchestrator = s.Orchestrator
	budgetService = s.Budget
	settingsService = s.Settings
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	defer teardown(nil, nil)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), errorStyle.Render("Error:"), err)
	return exitCode(err)
}

// exitCode maps an error to the documented exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errCancelled), errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, errBudgetExceeded), errors.Is(err, domain.ErrBudgetExceeded):
		return ExitBudgetExceeded
	case errors.Is(err, domain.ErrUnitNotFound), errors.Is(err, domain.ErrNotFound):
		return ExitUnitNotFound
	case errors.Is(err, domain.ErrExtractionService),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrAccountingService):
		return ExitServiceError
	default:
		return ExitError
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), globalOpts)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// notConfigured reports a missing service with a hint.
func notConfigured(what string) error {
	return fmt.Errorf("%s not configured. Run 'nomina settings wizard' to fix", what)
}
