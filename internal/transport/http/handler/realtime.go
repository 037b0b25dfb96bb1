package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-referral-api/internal/infrastructure/realtime"
	"github.com/go-referral-api/internal/pkg/logx"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

const heartbeatEvery = 25 * time.Second

type subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan realtime.Event, func(), error)
}

// RealtimeHandler streams a user's referral and wallet events as
// Server-Sent Events.
type RealtimeHandler struct {
	sub       subscriber
	heartbeat time.Duration
}

func NewRealtimeHandler(sub subscriber) *RealtimeHandler {
	return &RealtimeHandler{sub: sub, heartbeat: heartbeatEvery}
}

func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	events, cancel, err := h.sub.Subscribe(r.Context(), u.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logx.FromContext(r.Context()).Warn("sse flush unsupported", "err", err)
		return
	}

	tick := time.NewTicker(h.heartbeat)
	defer tick.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data); err != nil {
				return
			}
		case <-tick.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
