package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for nomina resources.
	uriScheme = "nomina://"
)

// collectionInfo is one collection with its processing progress.
type collectionInfo struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Testament  string `json:"testament,omitempty"`
	Groups     int    `json:"groups"`
	Units      int    `json:"units"`
	Processed  int    `json:"processed"`
	Percentage int    `json:"percentage"`
}

// groupInfo is one group with its processing progress.
type groupInfo struct {
	Group      int `json:"group"`
	Units      int `json:"units"`
	Processed  int `json:"processed"`
	Percentage int `json:"percentage"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Collections of the corpus with their processing progress",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{key}",
		Name:        "collection-groups",
		Description: "Per-group processing progress of one collection",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)
}

// handleCollectionsResource returns every collection with its progress.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	collections, err := s.ports.Corpus.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	infos := make([]collectionInfo, len(collections))
	for i, c := range collections {
		stats, err := s.ports.Corpus.CollectionStats(ctx, c.Key)
		if err != nil {
			return nil, fmt.Errorf("collection stats %s: %w", c.Key, err)
		}
		infos[i] = collectionInfo{
			Key:        c.Key,
			Name:       c.DisplayName,
			Testament:  c.Testament,
			Groups:     c.GroupCount,
			Units:      stats.Total,
			Processed:  stats.Processed,
			Percentage: stats.Percentage,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleCollectionResource returns the per-group progress of one collection.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractCollectionKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Corpus.CollectionStats(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("collection stats %s: %w", key, err)
	}

	groups := make([]groupInfo, len(stats.Groups))
	for i, g := range stats.Groups {
		groups[i] = groupInfo{
			Group:      g.Group,
			Units:      g.Total,
			Processed:  g.Processed,
			Percentage: g.Percentage,
		}
	}
	return jsonResource(req.Params.URI, groups)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollectionKey extracts the key from a URI like nomina://collections/{key}.
func extractCollectionKey(uri string) string {
	const prefix = uriScheme + "collections/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	key := strings.TrimPrefix(uri, prefix)
	if strings.Contains(key, "/") {
		return ""
	}
	return key
}
