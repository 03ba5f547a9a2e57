package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Browse extracted names",
}

var namesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List distinct extracted names",
	Args:  cobra.NoArgs,
	RunE:  runNamesList,
}

var namesRefsCmd = &cobra.Command{
	Use:   "refs [name]",
	Short: "List the units a name was extracted from",
	Args:  cobra.ExactArgs(1),
	RunE:  runNamesRefs,
}

var namesDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete every record of a name",
	Long: `Delete every record of a name.

The units the name came from stay processed and are not extracted again.`,
	Args: cobra.ExactArgs(1),
	RunE: runNamesDelete,
}

var (
	namesFilter string
	namesType   string
	namesJSON   bool
	namesYes    bool
)

func init() {
	namesListCmd.Flags().StringVar(&namesFilter, "filter", "", "only names containing this text")
	namesListCmd.Flags().StringVar(&namesType, "type", "", "only names of this type: person or place")
	namesListCmd.Flags().BoolVar(&namesJSON, "json", false, "print as JSON")
	namesDeleteCmd.Flags().BoolVarP(&namesYes, "yes", "y", false, "do not ask for confirmation")

	namesCmd.AddCommand(namesListCmd)
	namesCmd.AddCommand(namesRefsCmd)
	namesCmd.AddCommand(namesDeleteCmd)
	rootCmd.AddCommand(namesCmd)
}

func runNamesList(cmd *cobra.Command, _ []string) error {
	if nameService == nil {
		return notConfigured("database")
	}

	filter := domain.NameFilter{Query: namesFilter, Type: domain.NameType(strings.ToLower(namesType))}
	names, err := nameService.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list names: %w", err)
	}

	if namesJSON {
		if names == nil {
			names = []domain.ExtractedName{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}

	if len(names) == 0 {
		cmd.Println("No names found.")
		return nil
	}
	for _, n := range names {
		cmd.Printf("  %-24s %s\n", n.Name, mutedStyle.Render(n.Type.String()))
	}
	cmd.Println()
	cmd.Printf("Total: %d names\n", len(names))
	return nil
}

func runNamesRefs(cmd *cobra.Command, args []string) error {
	if nameService == nil {
		return notConfigured("database")
	}

	refs, err := nameService.UnitsForName(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to look up %q: %w", args[0], err)
	}
	if len(refs) == 0 {
		cmd.Printf("No units mention %q.\n", args[0])
		return nil
	}
	for _, r := range refs {
		cmd.Printf("  %s %d:%d\n", r.CollectionKey, r.Group, r.Unit)
	}
	return nil
}

func runNamesDelete(cmd *cobra.Command, args []string) error {
	if nameService == nil {
		return notConfigured("database")
	}
	name := args[0]

	if !namesYes {
		if !isInteractive() {
			return fmt.Errorf("%w: refusing to delete without --yes when not on a terminal", domain.ErrInvalidInput)
		}
		cmd.Printf("Delete every record of %q? [y/N]: ", name)
		answer := strings.ToLower(readLine(bufio.NewReader(stdin)))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	n, err := nameService.Delete(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}
	cmd.Printf("Deleted %d records of %q.\n", n, name)
	return nil
}
