package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neverluckskr/TSObukhivBot/internal/services/stats"
)

type statsStub struct {
	summary stats.Summary
	err     error
}

func (s *statsStub) Summary(context.Context) (stats.Summary, error) {
	return s.summary, s.err
}

func TestHandleStats(t *testing.T) {
	server := NewServer(":0", &statsStub{summary: stats.Summary{Total: 4, Pending: 1, Approved: 2, Rejected: 1}}, nil)

	recorder := httptest.NewRecorder()
	server.handleStats(recorder, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["total"] != 4 || body["pending"] != 1 || body["approved"] != 2 || body["rejected"] != 1 {
		t.Fatalf("body = %v", body)
	}
}

func TestHandleStatsError(t *testing.T) {
	server := NewServer(":0", &statsStub{err: errors.New("db down")}, nil)

	recorder := httptest.NewRecorder()
	server.handleStats(recorder, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", recorder.Code)
	}
}
