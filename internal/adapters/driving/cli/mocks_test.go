package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// runCLI executes the root command against the given services and returns
// everything written to stdout and stderr.
func runCLI(t *testing.T, s *Services, args ...string) (string, error) {
	t.Helper()

	SetServices(s)
	resetFlags()
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags() {
	verbose = false
	processForce = false
	namesFilter = ""
	namesType = ""
	namesJSON = false
	namesYes = false
	mcpHTTPAddr = ""
	versionShort = false
}

// withStdin replaces prompt input for one test.
func withStdin(t *testing.T, input string, interactive bool) {
	t.Helper()
	oldStdin, oldInteractive := stdin, isInteractive
	stdin = strings.NewReader(input)
	isInteractive = func() bool { return interactive }
	t.Cleanup(func() {
		stdin, isInteractive = oldStdin, oldInteractive
	})
}

// mockCorpusService serves canned collections and statuses.
type mockCorpusService struct {
	collections []domain.Collection
	units       map[string][]domain.UnitStatus
	stats       map[string]*domain.CollectionStats
	err         error
}

func (m *mockCorpusService) ListCollections(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCorpusService) GetCollection(_ context.Context, key string) (*domain.Collection, error) {
	for i := range m.collections {
		if m.collections[i].Key == key {
			return &m.collections[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCorpusService) ListUnits(_ context.Context, key string, group int) ([]domain.UnitStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	units, ok := m.units[key]
	if !ok || group != 1 {
		return nil, domain.ErrNotFound
	}
	return units, nil
}

func (m *mockCorpusService) GroupStats(_ context.Context, key string, group int) (*domain.GroupStats, error) {
	stats, ok := m.stats[key]
	if !ok || group > len(stats.Groups) {
		return nil, domain.ErrNotFound
	}
	return &stats.Groups[group-1], nil
}

func (m *mockCorpusService) CollectionStats(_ context.Context, key string) (*domain.CollectionStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	stats, ok := m.stats[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return stats, nil
}

// mockNameService records deletions.
type mockNameService struct {
	names      []domain.ExtractedName
	refs       map[string][]domain.UnitReference
	lastFilter domain.NameFilter
	deleted    []string
	err        error
}

func (m *mockNameService) List(_ context.Context, filter domain.NameFilter) ([]domain.ExtractedName, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, domain.ErrUnsupportedType
	}
	var out []domain.ExtractedName
	for _, n := range m.names {
		if filter.Matches(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNameService) UnitsForName(_ context.Context, name string) ([]domain.UnitReference, error) {
	return m.refs[name], m.err
}

func (m *mockNameService) Delete(_ context.Context, name string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.deleted = append(m.deleted, name)
	return len(m.refs[name]), nil
}

// mockUnitService returns a fixed result.
type mockUnitService struct {
	result *domain.ProcessResult
	err    error
	refs   []domain.UnitReference
	forced []bool
}

func (m *mockUnitService) Process(_ context.Context, ref domain.UnitReference, force bool) (*domain.ProcessResult, error) {
	m.refs = append(m.refs, ref)
	m.forced = append(m.forced, force)
	if m.err != nil {
		return nil, m.err
	}
	res := *m.result
	res.Ref = ref
	return &res, nil
}

func (m *mockUnitService) ProcessText(ctx context.Context, ref domain.UnitReference, _, _ string, force bool) (*domain.ProcessResult, error) {
	return m.Process(ctx, ref, force)
}

// mockOrchestrator returns canned sweep results and replays progress events.
type mockOrchestrator struct {
	group      *domain.GroupSweepResult
	collection *domain.CollectionSweepResult
	events     []domain.SweepProgress
	err        error
}

func (m *mockOrchestrator) SweepGroup(_ context.Context, key string, group int, opts domain.SweepOptions) (*domain.GroupSweepResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.replay(opts)
	res := *m.group
	res.CollectionKey, res.Group = key, group
	return &res, nil
}

func (m *mockOrchestrator) SweepCollection(_ context.Context, key string, opts domain.SweepOptions) (*domain.CollectionSweepResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.replay(opts)
	res := *m.collection
	res.CollectionKey = key
	return &res, nil
}

func (m *mockOrchestrator) replay(opts domain.SweepOptions) {
	if opts.Progress == nil {
		return
	}
	for _, ev := range m.events {
		opts.Progress(ev)
	}
}

// mockBudgetService reports a fixed snapshot.
type mockBudgetService struct {
	snapshot   domain.BudgetSnapshot
	thresholds domain.BudgetThresholds
	refreshErr error
	refreshes  int
}

func (m *mockBudgetService) Refresh(_ context.Context) (*domain.BudgetSnapshot, error) {
	m.refreshes++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	snap := m.snapshot
	return &snap, nil
}

func (m *mockBudgetService) Snapshot() domain.BudgetSnapshot     { return m.snapshot }
func (m *mockBudgetService) Thresholds() domain.BudgetThresholds { return m.thresholds }
func (m *mockBudgetService) CurrentTotal() int64                 { return m.snapshot.TotalUnits }
func (m *mockBudgetService) IsAtWarning() bool {
	return m.snapshot.TotalUnits >= m.thresholds.Warning
}
func (m *mockBudgetService) IsAtLimit() bool {
	return m.snapshot.TotalUnits >= m.thresholds.Limit
}
func (m *mockBudgetService) CanProceed() bool { return !m.IsAtLimit() }

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	llmErr      error
	saved       int
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	m.saved++
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error          { return m.validateErr }
func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
