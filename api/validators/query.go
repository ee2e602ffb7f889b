package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
	"github.com/cjdworks/stockpos-backend/pkg/pagination"
)

// QueryPagination pulls limit/cursor query parameters. A malformed limit is
// treated as absent; cursor validity is checked by the repository.
func QueryPagination(r *http.Request) pagination.Params {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
}

// QueryTime parses an optional RFC3339 or YYYY-MM-DD query parameter.
func QueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("%s must be RFC3339 or YYYY-MM-DD", key))
}

// PathUUID parses a chi URL parameter as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
