package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dartclub/league-system/live"
	"github.com/dartclub/league-system/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || allowed[origin]
			},
		},
		logger: logger,
	}
}

// ServeWs upgrades GET /ws/tournaments/{tournamentID} to a websocket and
// subscribes the client to that tournament's room.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn("websocket upgrade failed",
			slog.Int("tournament_id", id),
			slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, services.TournamentRoom(id))

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client connected", slog.Int("tournament_id", id))
}
