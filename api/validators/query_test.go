package validators

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestQueryPagination(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/v1/logs?limit=10&cursor=%20abc%20", nil)
	params := QueryPagination(req)
	if params.Limit != 10 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}

	req = httptest.NewRequest("GET", "/api/v1/logs?limit=banana", nil)
	params = QueryPagination(req)
	if params.Limit != 0 {
		t.Fatalf("malformed limit must be treated as absent, got %d", params.Limit)
	}
}

func TestQueryTime(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/v1/logs?from=2025-08-01", nil)
	got, err := QueryTime(req, "from")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	req = httptest.NewRequest("GET", "/api/v1/logs?from=2025-08-01T10%3A30%3A00Z", nil)
	if _, err := QueryTime(req, "from"); err != nil {
		t.Fatalf("parse RFC3339: %v", err)
	}

	req = httptest.NewRequest("GET", "/api/v1/logs", nil)
	got, err = QueryTime(req, "from")
	if err != nil || got != nil {
		t.Fatalf("absent key must return nil, got %v %v", got, err)
	}

	req = httptest.NewRequest("GET", "/api/v1/logs?from=yesterday", nil)
	if _, err := QueryTime(req, "from"); err == nil {
		t.Fatal("expected validation error for malformed time")
	}
}
