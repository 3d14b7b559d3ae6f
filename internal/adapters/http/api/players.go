package api

import (
	"context"
	"net/http"

	"github.com/okian/movestat/internal/domain/aggregate"
)

// PlayersDependencies defines the averaged read operation.
type PlayersDependencies interface {
	Averages(ctx context.Context) ([]aggregate.Averaged, error)
}

// PlayersHandler serves per-player averages across stored matches.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandlePlayers handles GET /players requests.
func (h *PlayersHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	avg, err := h.deps.Averages(r.Context())
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}
	if avg == nil {
		avg = []aggregate.Averaged{}
	}
	writeJSON(w, http.StatusOK, avg)
}
