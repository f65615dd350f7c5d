package handlers

import (
	"errors"
	"net/http"

	"github.com/dartclub/league-system/services"
)

type AutodartsHandler struct {
	autodartsService services.AutodartsService
}

func NewAutodartsHandler(as services.AutodartsService) *AutodartsHandler {
	return &AutodartsHandler{autodartsService: as}
}

// SubmitGameResultHandler handles POST /api/autodarts/game-result.
// Unmatched reports are not errors: the extension posts every finished
// game and most of them are not league games.
func (h *AutodartsHandler) SubmitGameResultHandler(w http.ResponseWriter, r *http.Request) {
	var report services.AutodartsGameResult
	if err := readJSON(w, r, &report); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if report.HomePlayerUsername == "" || report.AwayPlayerUsername == "" {
		badRequestResponse(w, r, errors.New("home and away player usernames are required"))
		return
	}

	fixture, err := h.autodartsService.SubmitGameResult(r.Context(), report)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if fixture == nil {
		response := jsonResponse{
			"matched": false,
			"message": "No matching pending fixture found",
		}
		if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	response := jsonResponse{
		"matched": true,
		"fixture": fixture,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
