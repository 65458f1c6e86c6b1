package handler

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/dukerupert/houseboard/internal/house"
	"github.com/dukerupert/houseboard/internal/loader"
	"github.com/dukerupert/houseboard/internal/metrics"
	"github.com/dukerupert/houseboard/internal/model"
	"github.com/dukerupert/houseboard/internal/session"
	"github.com/dukerupert/houseboard/internal/store"
	ws "github.com/dukerupert/houseboard/internal/websocket"
)

// StatusSource reports the catalog loading state.
type StatusSource interface {
	Status() loader.Status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// houses returns the session's store. EnsureSession guarantees one on every
// routed request, so a nil here is a wiring bug.
func houses(w http.ResponseWriter, r *http.Request) (*store.HouseStore, bool) {
	hs := session.Houses(r.Context())
	if hs == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return nil, false
	}
	return hs, true
}

// changeNotifier tells the session's other tabs and the metrics about a
// trait change.
type changeNotifier struct {
	hub     *ws.Hub
	metrics *metrics.Metrics
}

func (n changeNotifier) traitChanged(r *http.Request, houseID string, action house.Action, name string) {
	if action == house.ActionNone {
		return
	}
	verb := "added"
	if action == house.ActionRemove {
		verb = "removed"
	}
	if n.metrics != nil {
		n.metrics.TraitMutations.WithLabelValues(string(action)).Inc()
	}
	if n.hub != nil {
		n.hub.Publish(session.Key(r.Context()), ws.NewMessage("trait", verb, houseID, map[string]any{"name": name}))
	}
}

// houseCard is the view model of one card.
type houseCard struct {
	House    model.House
	Gradient string
	Style    template.CSS
	Draft    string
	Traits   []model.Trait
}

func newHouseCard(h model.House, draft string) houseCard {
	gradient := house.Gradient(h.Colors)
	return houseCard{
		House:    h,
		Gradient: gradient,
		// Gradient only ever yields validated colour tokens or the fallback.
		Style:  template.CSS("background: linear-gradient(to right, " + gradient + ")"),
		Draft:  draft,
		Traits: house.FilterTraits(h.Traits, draft),
	}
}
