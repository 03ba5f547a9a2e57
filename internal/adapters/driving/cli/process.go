package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/logger"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract names from units, groups or collections",
	Long: `Extract names from the corpus.

Units already processed are answered from the database and never sent to the
LLM again unless --force is given. No unit is sent to the LLM once the daily
budget limit is reached. Group and collection sweeps then stop; run the same
command again to resume.`,
}

var processUnitCmd = &cobra.Command{
	Use:   "unit [collection] [group] [unit]",
	Short: "Process one unit",
	Args:  cobra.ExactArgs(3),
	RunE:  runProcessUnit,
}

var processGroupCmd = &cobra.Command{
	Use:   "group [collection] [group]",
	Short: "Process every unprocessed unit of a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runProcessGroup,
}

var processCollectionCmd = &cobra.Command{
	Use:   "collection [collection]",
	Short: "Process every unprocessed unit of a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcessCollection,
}

// processForce is the --force flag of 'process unit'.
var processForce bool

func init() {
	processUnitCmd.Flags().BoolVarP(&processForce, "force", "f", false, "discard stored names and extract again")

	processCmd.AddCommand(processUnitCmd)
	processCmd.AddCommand(processGroupCmd)
	processCmd.AddCommand(processCollectionCmd)
	rootCmd.AddCommand(processCmd)
}

func runProcessUnit(cmd *cobra.Command, args []string) error {
	if unitService == nil {
		return notConfigured("processing")
	}
	group, err := parsePositive(args[1], "group")
	if err != nil {
		return err
	}
	unit, err := parsePositive(args[2], "unit")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	refreshBudget(ctx)

	ref := domain.UnitReference{CollectionKey: args[0], Group: group, Unit: unit, Version: corpusVersion()}
	result, err := unitService.Process(ctx, ref, processForce)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", ref, err)
	}

	switch {
	case result.AlreadyProcessed:
		cmd.Printf("%s already processed %s\n", ref, mutedStyle.Render("(use --force to extract again)"))
	case result.Skipped:
		cmd.Printf("%s processed %s\n", ref, mutedStyle.Render("(no candidate names, LLM not called)"))
	default:
		cmd.Printf("%s processed\n", ref)
	}

	if len(result.Names) == 0 {
		cmd.Println("  No names.")
		return nil
	}
	for _, n := range result.Names {
		cmd.Printf("  %s (%s)\n", n.Name, n.Type)
	}
	return nil
}

func runProcessGroup(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return notConfigured("processing")
	}
	group, err := parsePositive(args[1], "group")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	refreshBudget(ctx)

	progress := newProgressPrinter(cmd.OutOrStdout())
	res, err := orchestrator.SweepGroup(ctx, args[0], group, domain.SweepOptions{Progress: progress.update})
	if err != nil {
		return fmt.Errorf("failed to process %s %d: %w", args[0], group, err)
	}

	progress.finish()
	printCounters(cmd, res.SweepCounters, len(res.Failures))
	return sweepError(res.Outcome, res.Failures)
}

func runProcessCollection(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return notConfigured("processing")
	}
	ctx := cmd.Context()
	refreshBudget(ctx)

	progress := newProgressPrinter(cmd.OutOrStdout())
	res, err := orchestrator.SweepCollection(ctx, args[0], domain.SweepOptions{Progress: progress.update})
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", args[0], err)
	}

	progress.finish()
	cmd.Printf("%s: %s, %d groups visited\n", args[0],
		formatProgress(res.Stats.Processed, res.Stats.Total, res.Stats.Percentage), res.GroupsVisited)
	printCounters(cmd, res.SweepCounters, len(res.Failures))
	return sweepError(res.Outcome, res.Failures)
}

// corpusVersion returns the version of the configured corpus.
func corpusVersion() string {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Corpus.Version != "" {
			return settings.Corpus.Version
		}
	}
	return domain.DefaultCorpusVersion
}

// refreshBudget takes a first snapshot so the limit check starts from real consumption.
func refreshBudget(ctx context.Context) {
	if budgetService == nil {
		return
	}
	if _, err := budgetService.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrAccountingUnavailable) {
			logger.Debug("usage accounting not configured, budget is not enforced")
			return
		}
		logger.Warn("budget refresh failed: %v", err)
	}
}

func printCounters(cmd *cobra.Command, c domain.SweepCounters, failed int) {
	cmd.Printf("  newly processed: %d (%d extracted, %d skipped by filter)\n",
		c.NewlyProcessed, c.Extracted, c.Skipped)
	cmd.Printf("  names found:     %d\n", c.NamesFound)
	if c.AlreadyProcessed > 0 {
		cmd.Printf("  already done:    %d\n", c.AlreadyProcessed)
	}
	if failed > 0 {
		cmd.Printf("  failed:          %s\n", errorStyle.Render(fmt.Sprint(failed)))
	}
}

// sweepError turns a sweep outcome into the command's error.
func sweepError(outcome domain.SweepOutcome, failures []domain.UnitFailure) error {
	switch outcome {
	case domain.SweepStoppedByLimit:
		return errBudgetExceeded
	case domain.SweepCancelled:
		return errCancelled
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d units failed, first %s: %w", len(failures), failures[0].Ref, failures[0].Err)
	}
	return nil
}

// progressPrinter renders sweep progress: a live line on terminals, one
// line per finished group otherwise.
type progressPrinter struct {
	out  io.Writer
	live bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	live := false
	if f, ok := out.(*os.File); ok {
		live = term.IsTerminal(int(f.Fd()))
	}
	return &progressPrinter{out: out, live: live}
}

func (p *progressPrinter) update(ev domain.SweepProgress) {
	if ev.GroupDone {
		p.clear()
		stats := ev.GroupStats
		fmt.Fprintf(p.out, "%s %d: %s\n", ev.CollectionKey, ev.Group,
			formatProgress(stats.Processed, stats.Total, stats.Percentage))
		return
	}
	if !p.live {
		return
	}

	status := "ok"
	switch {
	case ev.LastErr != nil:
		status = errorStyle.Render("failed")
	case ev.Last != nil && ev.Last.Skipped:
		status = mutedStyle.Render("skipped")
	case ev.Last != nil:
		status = successStyle.Render(fmt.Sprintf("%d names", len(ev.Last.Names)))
	}
	fmt.Fprintf(p.out, "\r\033[K%s %d [%d/%d] %s", ev.CollectionKey, ev.Group, ev.UnitIndex, ev.UnitTotal, status)
}

func (p *progressPrinter) clear() {
	if p.live {
		fmt.Fprint(p.out, "\r\033[K")
	}
}

func (p *progressPrinter) finish() {
	p.clear()
}
