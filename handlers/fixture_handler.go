package handlers

import (
	"net/http"

	"github.com/dartclub/league-system/services"
)

type FixtureHandler struct {
	tournamentService services.TournamentService
}

func NewFixtureHandler(ts services.TournamentService) *FixtureHandler {
	return &FixtureHandler{tournamentService: ts}
}

// StartHandler handles POST /api/fixtures/{fixtureID}/start.
func (h *FixtureHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.tournamentService.SetFixtureInProgress(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler handles POST /api/fixtures/{fixtureID}/result.
func (h *FixtureHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.tournamentService.SubmitResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
