package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cjdworks/stockpos-backend/api/responses"
	changessvc "github.com/cjdworks/stockpos-backend/internal/changes"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
)

// ChangesStream streams change events over SSE so clients know when to
// refetch. Events name the entity that changed and carry no row data.
func ChangesStream(streamer *changessvc.Streamer, heartbeat time.Duration, logg *logger.Logger) http.HandlerFunc {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		events, err := streamer.Stream(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to change feed"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
