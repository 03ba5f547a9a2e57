package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

var midnight = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestNewAccountant_RequiresAdminKey(t *testing.T) {
	_, err := NewAccountant(Config{})
	assert.ErrorIs(t, err, domain.ErrAccountingUnavailable)
}

func TestDailyUsage_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organization/usage/completions", r.URL.Path)
		assert.Equal(t, "Bearer admin", r.Header.Get("Authorization"))
		assert.Equal(t, "1773446400", r.URL.Query().Get("start_time"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[
			{"results":[{"input_tokens":100,"output_tokens":20,"num_model_requests":3}]},
			{"results":[{"input_tokens":5,"output_tokens":1,"num_model_requests":1},{"input_tokens":0,"output_tokens":0,"num_model_requests":0}]}
		],"has_more":false}`))
	}))
	defer srv.Close()

	a, err := NewAccountant(Config{AdminKey: "admin", BaseURL: srv.URL})
	require.NoError(t, err)

	report, err := a.DailyUsage(context.Background(), midnight)
	require.NoError(t, err)
	require.Len(t, report.Buckets, 3)

	snap := domain.SnapshotFromReport(report, midnight, time.Now())
	assert.Equal(t, int64(105), snap.InputUnits)
	assert.Equal(t, int64(21), snap.OutputUnits)
	assert.Equal(t, int64(126), snap.TotalUnits)
	assert.Equal(t, int64(4), snap.RequestCount)
}

func TestDailyUsage_FollowsNextPage(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if page == "" {
			_, _ = w.Write([]byte(`{"data":[{"results":[{"input_tokens":1,"output_tokens":1}]}],"has_more":true,"next_page":"p2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"results":[{"input_tokens":2,"output_tokens":2}]}],"has_more":false,"next_page":null}`))
	}))
	defer srv.Close()

	a, err := NewAccountant(Config{AdminKey: "admin", BaseURL: srv.URL})
	require.NoError(t, err)

	report, err := a.DailyUsage(context.Background(), midnight)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "p2"}, pages)
	assert.Len(t, report.Buckets, 2)
}

func TestDailyUsage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid admin key"))
	}))
	defer srv.Close()

	a, err := NewAccountant(Config{AdminKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.DailyUsage(context.Background(), midnight)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountingService)

	var accErr *domain.AccountingError
	require.True(t, errors.As(err, &accErr))
	assert.Equal(t, http.StatusUnauthorized, accErr.Status)
	assert.Equal(t, "invalid admin key", accErr.Body)
}

func TestDailyUsage_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	a, err := NewAccountant(Config{AdminKey: "admin", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.DailyUsage(context.Background(), midnight)
	assert.ErrorIs(t, err, domain.ErrAccountingService)
}

func TestDailyUsage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	a, err := NewAccountant(Config{AdminKey: "admin", BaseURL: url})
	require.NoError(t, err)

	_, err = a.DailyUsage(context.Background(), midnight)
	assert.ErrorIs(t, err, domain.ErrAccountingService)
}

func TestDailyUsage_RateLimitedIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	a, err := NewAccountant(Config{AdminKey: "admin", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.DailyUsage(context.Background(), midnight)

	var accErr *domain.AccountingError
	require.True(t, errors.As(err, &accErr))
	assert.Equal(t, http.StatusTooManyRequests, accErr.Status)
	assert.Contains(t, accErr.Body, "slow down")
	assert.Equal(t, 1, calls)
}
