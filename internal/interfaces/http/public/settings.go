package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/interfaces/http/common"
	settingsdomain "github.com/crustntrust/site-api/internal/settings/domain"
)

const streamHeartbeat = 25 * time.Second

func (h *Handler) applicationsSettingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		common.WriteJSON(h.logger, w, http.StatusOK, applicationsSettingResponse{
			AcceptingApplications: h.settings.Accepting(r.Context()),
		})
	}
}

// settingsStreamHandler pushes every settings snapshot as a server-sent event.
func (h *Handler) settingsStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusInternalServerError, common.MessageUnavailable)
			return
		}
		ctx := r.Context()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		snapshots := make(chan settingsdomain.Snapshot, 1)
		unsubscribe := h.settings.Subscribe(ctx, func(s settingsdomain.Snapshot) {
			select {
			case snapshots <- s:
			case <-ctx.Done():
			}
		})
		defer unsubscribe()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case s := <-snapshots:
				data, err := json.Marshal(s)
				if err != nil {
					h.logger.Warn("settings snapshot encode failed", zap.Error(err))
					continue
				}
				if _, err := fmt.Fprintf(w, "id: %d\nevent: settings\ndata: %s\n\n", s.Seq, data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
