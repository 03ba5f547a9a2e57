// Package openai queries the OpenAI organisation usage API for daily token consumption.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/nomina/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// Ensure Accountant implements the interface.
var _ driven.UsageAccountant = (*Accountant)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 10

	// maxPages bounds pagination if the server keeps answering has_more.
	maxPages = 100
)

// Config holds configuration for the usage accountant.
type Config struct {
	// AdminKey is an organisation admin key (required).
	AdminKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// PageSize is the bucket limit per request (default: 10).
	PageSize int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Accountant reads completion usage buckets.
// Requests are never repeated; a failed refresh keeps the previous snapshot.
type Accountant struct {
	client   *httpjson.Client
	pageSize int
}

// usagePage is one page of /organization/usage/completions.
type usagePage struct {
	Data []struct {
		StartTime int64 `json:"start_time"`
		EndTime   int64 `json:"end_time"`
		Results   []struct {
			InputTokens      int64 `json:"input_tokens"`
			OutputTokens     int64 `json:"output_tokens"`
			NumModelRequests int64 `json:"num_model_requests"`
		} `json:"results"`
	} `json:"data"`
	HasMore  bool   `json:"has_more"`
	NextPage string `json:"next_page"`
}

// NewAccountant creates a usage accountant.
func NewAccountant(cfg Config) (*Accountant, error) {
	if cfg.AdminKey == "" {
		return nil, fmt.Errorf("%w: admin key is required", domain.ErrAccountingUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Accountant{
		client: httpjson.New(httpjson.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Header:  http.Header{"Authorization": {"Bearer " + cfg.AdminKey}},
			Retry:   httpjson.NoRetry(),
		}),
		pageSize: cfg.PageSize,
	}, nil
}

// DailyUsage returns every result bucket recorded since the given instant,
// following next_page until the server reports no more data.
func (a *Accountant) DailyUsage(ctx context.Context, since time.Time) (domain.UsageReport, error) {
	var report domain.UsageReport
	page := ""
	for i := 0; i < maxPages; i++ {
		p, err := a.fetchPage(ctx, since, page)
		if err != nil {
			return domain.UsageReport{}, err
		}
		for _, bucket := range p.Data {
			for _, r := range bucket.Results {
				report.Buckets = append(report.Buckets, domain.UsageBucket{
					InputCount:   r.InputTokens,
					OutputCount:  r.OutputTokens,
					RequestCount: r.NumModelRequests,
				})
			}
		}
		if !p.HasMore || p.NextPage == "" {
			return report, nil
		}
		page = p.NextPage
	}
	return domain.UsageReport{}, fmt.Errorf("%w: pagination exceeded %d pages", domain.ErrAccountingService, maxPages)
}

func (a *Accountant) fetchPage(ctx context.Context, since time.Time, page string) (*usagePage, error) {
	q := url.Values{}
	q.Set("start_time", strconv.FormatInt(since.Unix(), 10))
	q.Set("limit", strconv.Itoa(a.pageSize))
	if page != "" {
		q.Set("page", page)
	}

	var p usagePage
	if err := a.client.Get(ctx, "/organization/usage/completions?"+q.Encode(), &p); err != nil {
		var se *httpjson.StatusError
		if errors.As(err, &se) {
			return nil, &domain.AccountingError{Status: se.Status, Body: se.Body}
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAccountingService, err)
	}
	return &p, nil
}
