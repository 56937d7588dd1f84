/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package preview

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	ws "nhooyr.io/websocket"

	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/inject"
	"github.com/friendsincode/d4events/internal/telemetry"
)

const reloadSignature = "<!-- d4events:live-reload -->"

const reloadSnippet = `
    ` + reloadSignature + `
    <script>
    (function () {
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        let retry = 500;
        function connect() {
            const sock = new WebSocket(scheme + location.host + '/ws/reload');
            sock.onopen = function () { retry = 500; };
            sock.onmessage = function (msg) {
                try {
                    if (JSON.parse(msg.data).type === 'reload') location.reload();
                } catch (e) {}
            };
            sock.onclose = function () {
                setTimeout(connect, retry);
                retry = Math.min(retry * 2, 8000);
            };
        }
        connect();
    })();
    </script>
`

const pingInterval = 15 * time.Second

type reloadEvent struct {
	Reason string `json:"reason"`
}

type reloadMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// handlePage serves the page fresh from disk with the reload client added.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	raw, err := os.ReadFile(s.page)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "page_not_found")
			return
		}
		s.logger.Error().Err(err).Msg("read page failed")
		writeError(w, http.StatusInternalServerError, "read_failed")
		return
	}

	doc := string(raw)
	if len(s.opts.Injections) > 0 {
		spliced, _, err := inject.Splice(doc, s.opts.Injections...)
		if err != nil {
			s.logger.Warn().Err(err).Msg("serving page without widget")
		} else {
			doc = spliced
		}
	}

	if out, _, err := inject.Splice(doc, pageInjection); err == nil {
		doc = out
	} else {
		doc += reloadSnippet
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(doc))
}

// handleReload keeps a websocket open and forwards reload events to it.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	clientID := uuid.NewString()
	logger := s.logger.With().Str("client_id", clientID).Logger()
	logger.Debug().Msg("reload client connected")

	telemetry.PreviewReloadClients.Inc()
	defer telemetry.PreviewReloadClients.Dec()

	sub := s.bus.Subscribe(events.EventPreviewReload)
	defer s.bus.Unsubscribe(events.EventPreviewReload, sub)

	// The client never sends anything; CloseRead notices when it goes away.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("reload client disconnected")
			conn.Close(ws.StatusNormalClosure, "")
			return
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				logger.Debug().Err(err).Msg("websocket ping failed")
				return
			}
		case evt, ok := <-sub:
			if !ok {
				return
			}
			msg := reloadMessage{Type: "reload"}
			if re, ok := evt.Data.(reloadEvent); ok {
				msg.Reason = re.Reason
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Error().Err(err).Msg("encode reload message failed")
				return
			}
			if err := conn.Write(ctx, ws.MessageText, payload); err != nil {
				logger.Error().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}
