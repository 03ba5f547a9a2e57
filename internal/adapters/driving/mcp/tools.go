package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// ListNamesInput is the input schema for the list_names tool.
type ListNamesInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive substring the name must contain"`
	Type  string `json:"type,omitempty" jsonschema:"restrict to person or place"`
}

// ListNamesOutput is the output schema for the list_names tool.
type ListNamesOutput struct {
	Names []NameOutput `json:"names"`
	Count int          `json:"count"`
}

// NameOutput is one distinct extracted name.
type NameOutput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// UnitsForNameInput is the input schema for the units_for_name tool.
type UnitsForNameInput struct {
	Name string `json:"name" jsonschema:"the exact name as listed by list_names"`
}

// UnitsForNameOutput is the output schema for the units_for_name tool.
type UnitsForNameOutput struct {
	Units []UnitRefOutput `json:"units"`
	Count int             `json:"count"`
}

// UnitRefOutput identifies one unit.
type UnitRefOutput struct {
	Ref        string `json:"ref"`
	Collection string `json:"collection"`
	Group      int    `json:"group"`
	Unit       int    `json:"unit"`
	Version    string `json:"version"`
}

// UnitStatusInput is the input schema for the unit_status tool.
type UnitStatusInput struct {
	Collection string `json:"collection" jsonschema:"collection key, e.g. genesis"`
	Group      int    `json:"group" jsonschema:"1-based group number"`
	Unit       int    `json:"unit" jsonschema:"1-based unit number"`
}

// UnitStatusOutput is the output schema for the unit_status tool.
type UnitStatusOutput struct {
	Collection string       `json:"collection"`
	Group      int          `json:"group"`
	Unit       int          `json:"unit"`
	Text       string       `json:"text"`
	Processed  bool         `json:"processed"`
	Names      []NameOutput `json:"names"`
}

// BudgetInput is the input schema for the budget tool.
type BudgetInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"query the accounting service before answering"`
}

// BudgetOutput is the output schema for the budget tool.
type BudgetOutput struct {
	TotalTokens  int64  `json:"total_tokens"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	Requests     int64  `json:"requests"`
	Warning      int64  `json:"warning_tokens"`
	Limit        int64  `json:"limit_tokens"`
	AtWarning    bool   `json:"at_warning"`
	AtLimit      bool   `json:"at_limit"`
	FetchedAt    string `json:"fetched_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_names",
		Description: "List distinct extracted proper names, optionally filtered by text or type",
	}, s.handleListNames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "units_for_name",
		Description: "List the units a name was extracted from",
	}, s.handleUnitsForName)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "unit_status",
		Description: "Show a unit's text, whether it is processed and its extracted names",
	}, s.handleUnitStatus)

	if s.ports.Budget != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "budget",
			Description: "Show today's extraction service consumption against the budget",
		}, s.handleBudget)
	}
}

func (s *Server) handleListNames(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListNamesInput,
) (*mcp.CallToolResult, ListNamesOutput, error) {
	filter := domain.NameFilter{Query: input.Query, Type: domain.NameType(input.Type)}
	found, err := s.ports.Names.List(ctx, filter)
	if err != nil {
		return nil, ListNamesOutput{}, err
	}

	return nil, ListNamesOutput{Names: toNameOutputs(found), Count: len(found)}, nil
}

func (s *Server) handleUnitsForName(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UnitsForNameInput,
) (*mcp.CallToolResult, UnitsForNameOutput, error) {
	refs, err := s.ports.Names.UnitsForName(ctx, input.Name)
	if err != nil {
		return nil, UnitsForNameOutput{}, err
	}

	output := UnitsForNameOutput{
		Units: make([]UnitRefOutput, len(refs)),
		Count: len(refs),
	}
	for i, r := range refs {
		output.Units[i] = UnitRefOutput{
			Ref:        r.String(),
			Collection: r.CollectionKey,
			Group:      r.Group,
			Unit:       r.Unit,
			Version:    r.Version,
		}
	}
	return nil, output, nil
}

func (s *Server) handleUnitStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UnitStatusInput,
) (*mcp.CallToolResult, UnitStatusOutput, error) {
	units, err := s.ports.Corpus.ListUnits(ctx, input.Collection, input.Group)
	if err != nil {
		return nil, UnitStatusOutput{}, err
	}

	for _, u := range units {
		if u.Unit.Number != input.Unit {
			continue
		}
		return nil, UnitStatusOutput{
			Collection: input.Collection,
			Group:      input.Group,
			Unit:       input.Unit,
			Text:       u.Unit.Text,
			Processed:  u.Processed,
			Names:      toNameOutputs(u.Names),
		}, nil
	}
	return nil, UnitStatusOutput{}, fmt.Errorf("%w: %s %d:%d",
		domain.ErrUnitNotFound, input.Collection, input.Group, input.Unit)
}

func (s *Server) handleBudget(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BudgetInput,
) (*mcp.CallToolResult, BudgetOutput, error) {
	budget := s.ports.Budget
	if input.Refresh {
		// A failed refresh keeps the previous snapshot.
		if _, err := budget.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrAccountingUnavailable) {
			return nil, BudgetOutput{}, err
		}
	}

	snap := budget.Snapshot()
	thresholds := budget.Thresholds()
	output := BudgetOutput{
		TotalTokens:  snap.TotalUnits,
		InputTokens:  snap.InputUnits,
		OutputTokens: snap.OutputUnits,
		Requests:     snap.RequestCount,
		Warning:      thresholds.Warning,
		Limit:        thresholds.Limit,
		AtWarning:    budget.IsAtWarning(),
		AtLimit:      budget.IsAtLimit(),
	}
	if !snap.IsZero() {
		output.FetchedAt = snap.FetchedAt.UTC().Format(time.RFC3339)
	}
	return nil, output, nil
}

func toNameOutputs(in []domain.ExtractedName) []NameOutput {
	out := make([]NameOutput, len(in))
	for i, n := range in {
		out[i] = NameOutput{Name: n.Name, Type: n.Type.String()}
	}
	return out
}
