package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show today's token consumption against the budget",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	if budgetService == nil {
		return notConfigured("budget")
	}

	snap, err := budgetService.Refresh(cmd.Context())
	if errors.Is(err, domain.ErrAccountingUnavailable) {
		cmd.Println("Usage accounting is not configured; the budget is not enforced.")
		cmd.Println("Set usage.admin_key or OPENAI_ADMIN_KEY to enable it.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch usage: %w", err)
	}

	thresholds := budgetService.Thresholds()
	state := successStyle.Render("OK")
	switch {
	case budgetService.IsAtLimit():
		state = errorStyle.Render("LIMIT")
	case budgetService.IsAtWarning():
		state = warningStyle.Render("WARNING")
	}

	lines := []string{
		titleStyle.Render("Usage since " + snap.AsOfDate.Format("2006-01-02") + " 00:00 UTC"),
		"",
		fmt.Sprintf("Input tokens:   %s", formatCount(snap.InputUnits)),
		fmt.Sprintf("Output tokens:  %s", formatCount(snap.OutputUnits)),
		fmt.Sprintf("Total tokens:   %s", formatCount(snap.TotalUnits)),
		fmt.Sprintf("Requests:       %s", formatCount(snap.RequestCount)),
		"",
		fmt.Sprintf("Warning at:     %s", formatCount(thresholds.Warning)),
		fmt.Sprintf("Limit at:       %s", formatCount(thresholds.Limit)),
		fmt.Sprintf("State:          %s", state),
	}
	cmd.Println(boxStyle.Render(strings.Join(lines, "\n")))
	return nil
}
