package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kkkkikiki/shiftsweep/internal/history"
)

type stubRunLister struct {
	runs     []history.Run
	err      error
	gotLimit int
}

func (s *stubRunLister) RecentRuns(_ context.Context, limit int) ([]history.Run, error) {
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.runs, nil
}

func TestRecentRunsHandler(t *testing.T) {
	logger = zap.NewNop()
	lister := &stubRunLister{runs: []history.Run{{
		ID:         1,
		Mode:       "bulk",
		RefTime:    time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		Changed:    true,
		Scanned:    3,
		SetExpired: 1,
	}}}

	rec := httptest.NewRecorder()
	recentRunsHandler(lister)(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, recentRunsLimit, lister.gotLimit)

	var got []history.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bulk", got[0].Mode)
	assert.True(t, got[0].Changed)
	assert.Equal(t, 1, got[0].SetExpired)
}

func TestRecentRunsHandlerSinkUnavailable(t *testing.T) {
	logger = zap.NewNop()
	lister := &stubRunLister{err: fmt.Errorf("connection refused")}

	rec := httptest.NewRecorder()
	recentRunsHandler(lister)(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "run history unavailable")
}
