package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections with their progress",
	Args:  cobra.NoArgs,
	RunE:  runCollections,
}

var groupsCmd = &cobra.Command{
	Use:   "groups [collection]",
	Short: "Show per-group progress of a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroups,
}

var unitsCmd = &cobra.Command{
	Use:   "units [collection] [group]",
	Short: "List the units of a group with their names",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnits,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(unitsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return notConfigured("corpus")
	}
	ctx := cmd.Context()

	collections, err := corpusService.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) == 0 {
		cmd.Println("No collections found.")
		return nil
	}

	cmd.Println(titleStyle.Render("Collections"))
	cmd.Println()
	for _, c := range collections {
		stats, err := corpusService.CollectionStats(ctx, c.Key)
		if err != nil {
			return fmt.Errorf("failed to get stats for %s: %w", c.Key, err)
		}
		cmd.Printf("  %-16s %-24s %s\n", c.Key, c.DisplayName,
			formatProgress(stats.Processed, stats.Total, stats.Percentage))
	}
	cmd.Println()
	cmd.Printf("Total: %d collections\n", len(collections))
	return nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return notConfigured("corpus")
	}
	key := args[0]

	stats, err := corpusService.CollectionStats(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to get stats for %s: %w", key, err)
	}

	cmd.Printf("%s %s\n\n", titleStyle.Render(key),
		formatProgress(stats.Processed, stats.Total, stats.Percentage))
	for _, g := range stats.Groups {
		cmd.Printf("  %4d  %s\n", g.Group, formatProgress(g.Processed, g.Total, g.Percentage))
	}
	return nil
}

func runUnits(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return notConfigured("corpus")
	}
	key := args[0]
	group, err := parsePositive(args[1], "group")
	if err != nil {
		return err
	}

	units, err := corpusService.ListUnits(cmd.Context(), key, group)
	if err != nil {
		return fmt.Errorf("failed to list units: %w", err)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%s %d", key, group)))
	cmd.Println()
	for _, u := range units {
		marker := mutedStyle.Render("·")
		if u.Processed {
			marker = successStyle.Render("✓")
		}
		cmd.Printf("  %s %3d  %s\n", marker, u.Unit.Number, u.Unit.Text)
		if len(u.Names) > 0 {
			cmd.Printf("         %s\n", mutedStyle.Render(formatNames(u.Names)))
		}
	}
	return nil
}

// parsePositive parses a 1-based group or unit number.
func parsePositive(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, what, s)
	}
	return n, nil
}

// formatNames renders names as "Pedro (person), Galilea (place)".
func formatNames(names []domain.ExtractedName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s (%s)", n.Name, n.Type)
	}
	return strings.Join(parts, ", ")
}
