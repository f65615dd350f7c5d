package handlers

import (
	"net/http"

	"github.com/dartclub/league-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateHandler handles POST /api/tournaments.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /api/tournaments/{tournamentID}.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OverviewHandler handles GET /api/tournaments/{tournamentID}/overview.
func (h *TournamentHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.tournamentService.GetTournamentOverview(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, overview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /api/tournaments.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /api/tournaments/{tournamentID}.
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StartHandler handles POST /api/tournaments/{tournamentID}/start.
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.StartTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndHandler handles POST /api/tournaments/{tournamentID}/end.
func (h *TournamentHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.EndTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FixturesHandler handles GET /api/tournaments/{tournamentID}/fixtures.
func (h *TournamentHandler) FixturesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixtures, err := h.tournamentService.GetFixtures(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FixturesByRoundHandler handles GET /api/tournaments/{tournamentID}/fixtures/round/{roundNumber}.
func (h *TournamentHandler) FixturesByRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixtures, err := h.tournamentService.GetFixturesByRound(r.Context(), id, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextFixtureHandler handles GET /api/tournaments/{tournamentID}/next-fixture.
// Responds 204 when every fixture has been played.
func (h *TournamentHandler) NextFixtureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.tournamentService.GetNextPendingFixture(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if fixture == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler handles GET /api/tournaments/{tournamentID}/standings.
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
