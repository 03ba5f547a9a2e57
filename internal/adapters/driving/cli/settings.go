package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// stdin is read by interactive prompts.
var stdin io.Reader = os.Stdin

// isInteractive reports whether prompts can be answered.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var errNoSettings = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, the corpus location, the daily
budget and usage accounting.

Without a subcommand the current settings are shown.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Walk through the LLM provider, corpus, budget and usage accounting in turn.`,
	RunE:  runSettingsWizard,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Choose the provider and model used for extraction, then check that it answers.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// field is one "key: value" line of a settings section.
type field struct {
	key, value string
}

func printSection(cmd *cobra.Command, title string, fields ...field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.key))
	}
	cmd.Println(titleStyle.Render("[" + title + "]"))
	for _, f := range fields {
		cmd.Printf("  %-*s  %s\n", width+1, f.key+":", f.value)
	}
	cmd.Println()
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	llm := []field{
		{"Provider", s.LLM.Provider.Description()},
		{"Model", s.LLM.Model},
	}
	if s.LLM.BaseURL != "" {
		llm = append(llm, field{"Base URL", s.LLM.BaseURL})
	}
	if s.LLM.Provider.RequiresAPIKey() {
		llm = append(llm, field{"API Key", maskOrUnset(s.LLM.APIKey)})
	}
	if s.LLM.RequestsPerSecond > 0 {
		llm = append(llm, field{"Rate", fmt.Sprintf("%g requests/s", s.LLM.RequestsPerSecond)})
	}
	llm = append(llm, field{"Status", configuredStatus(s.LLM.IsConfigured())})
	printSection(cmd, "LLM", llm...)

	printSection(cmd, "Corpus",
		field{"Directory", orUnset(s.Corpus.Dir)},
		field{"Version", s.Corpus.Version},
		field{"Excluded", orUnset(strings.Join(s.Corpus.Exclude, ", "))},
	)
	printSection(cmd, "Budget",
		field{"Warning", formatCount(s.Budget.Thresholds.Warning) + " tokens"},
		field{"Limit", formatCount(s.Budget.Thresholds.Limit) + " tokens"},
		field{"Refresh every", fmt.Sprintf("%d units", s.Budget.RefreshEvery)},
	)
	printSection(cmd, "Usage Accounting",
		field{"Admin Key", maskOrUnset(s.Usage.AdminKey)},
		field{"Status", configuredStatus(s.Usage.IsConfigured())},
	)
	if s.Filter.LexiconPath != "" {
		printSection(cmd, "Filter", field{"Lexicon", s.Filter.LexiconPath})
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render("Warning:"), err)
		cmd.Println("Run 'nomina settings wizard' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

// prompter asks questions on the command's output and reads answers from stdin.
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, in: bufio.NewReader(stdin)}
}

func (p *prompter) step(n int, title string) {
	heading := fmt.Sprintf("Step %d: %s", n, title)
	p.cmd.Println(heading)
	p.cmd.Println(strings.Repeat("-", len(heading)))
}

// ask returns the answer, or def when it is empty.
func (p *prompter) ask(question, def string) string {
	p.cmd.Printf("%s [%s]: ", question, def)
	if answer := readLine(p.in); answer != "" {
		return answer
	}
	return def
}

func (p *prompter) secret(question string) string {
	p.cmd.Print(question + ": ")
	answer := readPassword(p.in)
	p.cmd.Println()
	return answer
}

func (p *prompter) tokens(question string, def int64) int64 {
	return parseTokens(p.ask(question, strconv.FormatInt(def, 10)), def)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	p := newPrompter(cmd)

	cmd.Println(titleStyle.Render("Nomina Settings Wizard"))
	cmd.Println()

	p.step(1, "LLM Provider")
	if err := configureLLMProvider(p); err != nil {
		return err
	}

	// Re-read so the provider saved in step 1 is kept.
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	p.step(2, "Corpus")
	s.Corpus.Dir = p.ask("Corpus directory", s.Corpus.Dir)
	cmd.Println()

	p.step(3, "Daily Budget")
	s.Budget.Thresholds.Warning = p.tokens("Warning tokens", s.Budget.Thresholds.Warning)
	s.Budget.Thresholds.Limit = p.tokens("Limit tokens", s.Budget.Thresholds.Limit)
	if err := s.Budget.Thresholds.Validate(); err != nil {
		return err
	}
	cmd.Println()

	p.step(4, "Usage Accounting")
	cmd.Println(mutedStyle.Render("An OpenAI admin key lets nomina stop before the daily limit."))
	if key := p.secret("Enter admin key (empty to keep current)"); key != "" {
		s.Usage.AdminKey = key
	}
	cmd.Println()

	if err := settingsService.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render("Saved with warnings:"), err)
		return nil
	}
	cmd.Println(successStyle.Render("All settings are valid and saved."))
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	return configureLLMProvider(newPrompter(cmd))
}

// configureLLMProvider saves the chosen provider, then pings it. The
// settings stay saved when the ping fails so a typo can be fixed in place.
func configureLLMProvider(p *prompter) error {
	providers := domain.AllLLMProviders()
	for i, provider := range providers {
		p.cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	provider := providers[parseChoice(p.ask("Provider", "1"), len(providers), 1)-1]
	model := p.ask("Model", domain.DefaultLLMModels()[provider])

	var apiKey string
	if provider.RequiresAPIKey() {
		if apiKey = p.secret("API key"); apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	p.cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		p.cmd.Println(errorStyle.Render("FAILED"))
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	p.cmd.Println(successStyle.Render("OK"))
	p.cmd.Printf("Using %s (%s)\n\n", provider.Description(), model)
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n') //nolint:errcheck // EOF yields the partial line
	return strings.TrimSpace(input)
}

// parseChoice returns the 1-based menu choice, or defaultVal when input is
// empty or out of range.
func parseChoice(input string, maxVal, defaultVal int) int {
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// parseTokens accepts digit separators ("2_500_000").
func parseTokens(input string, defaultVal int64) int64 {
	val, err := strconv.ParseInt(strings.ReplaceAll(input, "_", ""), 10, 64)
	if err != nil || val < 0 {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal; piped input is read as a line.
func readPassword(reader *bufio.Reader) string {
	if isInteractive() {
		if password, err := term.ReadPassword(int(os.Stdin.Fd())); err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
