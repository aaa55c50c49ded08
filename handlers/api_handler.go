package handlers

import (
	"net/http"

	"github.com/Dosada05/async-tournament/serializers"
	"github.com/Dosada05/async-tournament/services"
)

// APIHandler serves the read-only JSON API used by tournament tooling.
type APIHandler struct {
	tournamentService *services.TournamentService
}

func NewAPIHandler(tournamentService *services.TournamentService) *APIHandler {
	return &APIHandler{tournamentService: tournamentService}
}

func (h *APIHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	if err := writeJSON(w, http.StatusOK, data, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournaments godoc
// @Summary      List async tournaments
// @Tags         tournaments
// @Produce      json
// @Param        active  query  string  false  "true to list only active tournaments"
// @Success      200  {array}  object
// @Failure      401  {object}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments [get]
func (h *APIHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		v := raw == "true"
		active = &v
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), active)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.List(tournaments, serializers.Tournament))
}

// GetTournament godoc
// @Summary      Get an async tournament
// @Tags         tournaments
// @Produce      json
// @Param        id  path  int  true  "Tournament ID"
// @Success      200  {object}  object
// @Failure      404  {object}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id} [get]
func (h *APIHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.Tournament(tournament))
}

// ListRaces godoc
// @Summary      List races of a tournament
// @Description  Every race is returned with its tournament, permalink, pool, runner and reviewer.
// @Tags         races
// @Produce      json
// @Param        id               path   int     true   "Tournament ID"
// @Param        id               query  int     false  "Race ID"
// @Param        discord_user_id  query  int     false  "Runner Discord ID"
// @Param        permalink_id     query  int     false  "Permalink ID"
// @Param        pool_id          query  int     false  "Pool ID"
// @Param        pool_name        query  string  false  "Pool name"
// @Param        status           query  string  false  "Race status"
// @Success      200  {array}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id}/races [get]
func (h *APIHandler) ListRaces(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := services.ParseRaceAPIFilter(id, r.URL.Query())
	races, err := h.tournamentService.ListRaces(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.List(races, serializers.Race))
}

// ListPools godoc
// @Summary      List permalink pools of a tournament
// @Tags         pools
// @Produce      json
// @Param        id  path  int  true  "Tournament ID"
// @Success      200  {array}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id}/pools [get]
func (h *APIHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pools, err := h.tournamentService.ListPools(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.List(pools, serializers.Pool))
}

// GetPool godoc
// @Summary      Get a permalink pool
// @Tags         pools
// @Produce      json
// @Param        id       path  int  true  "Tournament ID"
// @Param        pool_id  path  int  true  "Pool ID"
// @Success      200  {object}  object
// @Failure      404  {object}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id}/pools/{pool_id} [get]
func (h *APIHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	poolID, err := getIDFromURL(r, "pool_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.tournamentService.GetPool(r.Context(), id, poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.Pool(pool))
}

// ListPermalinks godoc
// @Summary      List permalinks of a tournament
// @Tags         permalinks
// @Produce      json
// @Param        id         path   int     true   "Tournament ID"
// @Param        id         query  int     false  "Permalink ID"
// @Param        permalink  query  string  false  "Permalink URL"
// @Param        pool_id    query  int     false  "Pool ID"
// @Success      200  {array}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id}/permalinks [get]
func (h *APIHandler) ListPermalinks(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := services.ParsePermalinkAPIFilter(id, r.URL.Query())
	permalinks, err := h.tournamentService.ListPermalinks(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.List(permalinks, serializers.Permalink))
}

// GetPermalink godoc
// @Summary      Get a permalink
// @Tags         permalinks
// @Produce      json
// @Param        id            path  int  true  "Tournament ID"
// @Param        permalink_id  path  int  true  "Permalink ID"
// @Success      200  {object}  object
// @Failure      404  {object}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id}/permalinks/{permalink_id} [get]
func (h *APIHandler) GetPermalink(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	permalinkID, err := getIDFromURL(r, "permalink_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	permalink, err := h.tournamentService.GetPermalink(r.Context(), id, permalinkID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.Permalink(permalink))
}

// ListWhitelist godoc
// @Summary      List whitelisted runners of a tournament
// @Tags         whitelist
// @Produce      json
// @Param        id  path  int  true  "Tournament ID"
// @Success      200  {array}  object
// @Security     ApiKeyAuth
// @Router       /api/tournaments/{id}/whitelist [get]
func (h *APIHandler) ListWhitelist(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.tournamentService.ListWhitelist(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, serializers.List(entries, serializers.Whitelist))
}
