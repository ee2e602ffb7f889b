package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeOutOfStock, http.StatusConflict},
		{CodeDependency, http.StatusServiceUnavailable},
		{Code("UNKNOWN_CODE"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code); got.HTTPStatus != tc.status {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got.HTTPStatus, tc.status)
		}
	}
}

func TestWrapAndAs(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "db failed")

	typed := As(fmt.Errorf("outer: %w", err))
	if typed == nil {
		t.Fatal("expected typed error through wrap chain")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Unwrap() != cause {
		t.Fatal("expected original cause preserved")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeOutOfStock, "short").WithDetails(map[string]any{"available": 2})
	details, ok := err.Details().(map[string]any)
	if !ok || details["available"] != 2 {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
