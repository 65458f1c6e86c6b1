package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/houseboard/internal/house"
	"github.com/dukerupert/houseboard/internal/metrics"
	"github.com/dukerupert/houseboard/internal/model"
	"github.com/dukerupert/houseboard/internal/store"
	ws "github.com/dukerupert/houseboard/internal/websocket"
)

// HouseHandler serves the JSON API over the session's house store.
type HouseHandler struct {
	status   StatusSource
	fetchLog *store.FetchLogStore
	notify   changeNotifier
	logger   *slog.Logger
}

func NewHouseHandler(status StatusSource, fetchLog *store.FetchLogStore, hub *ws.Hub, m *metrics.Metrics, logger *slog.Logger) *HouseHandler {
	return &HouseHandler{
		status:   status,
		fetchLog: fetchLog,
		notify:   changeNotifier{hub: hub, metrics: m},
		logger:   logger,
	}
}

type houseResponse struct {
	model.House
	Gradient string `json:"gradient"`
}

func toResponse(h model.House) houseResponse {
	return houseResponse{House: h, Gradient: house.Gradient(h.Colors)}
}

type traitRequest struct {
	Name string `json:"name"`
}

type draftRequest struct {
	Draft string `json:"draft"`
}

type draftResponse struct {
	Action house.Action  `json:"action"`
	Name   string        `json:"name,omitempty"`
	House  houseResponse `json:"house"`
}

// List returns the houses whose name contains ?q=.
func (h *HouseHandler) List(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	filtered := hs.FilterByName(r.URL.Query().Get("q"))
	out := make([]houseResponse, 0, len(filtered))
	for _, hh := range filtered {
		out = append(out, toResponse(hh))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one house with its traits narrowed by ?q=.
func (h *HouseHandler) Get(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	hh, err := hs.House(r.PathValue("id"))
	if errors.Is(err, store.ErrHouseNotFound) {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}
	hh.Traits = house.FilterTraits(hh.Traits, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, toResponse(hh))
}

func (h *HouseHandler) AddTrait(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	var req traitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	changed, err := hs.AddTrait(id, req.Name)
	if errors.Is(err, store.ErrHouseNotFound) {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}
	if changed {
		h.notify.traitChanged(r, id, house.ActionAdd, strings.TrimSpace(req.Name))
	}

	h.writeHouse(w, hs, id, http.StatusOK)
}

func (h *HouseHandler) RemoveTrait(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	name := r.PathValue("name")
	changed, err := hs.RemoveTrait(id, name)
	if errors.Is(err, store.ErrHouseNotFound) {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}
	if changed {
		h.notify.traitChanged(r, id, house.ActionRemove, name)
	}

	h.writeHouse(w, hs, id, http.StatusOK)
}

// SubmitDraft applies a card draft: add when new, remove when present.
func (h *HouseHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	action, name, err := hs.SubmitDraft(id, req.Draft)
	if errors.Is(err, store.ErrHouseNotFound) {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}
	h.notify.traitChanged(r, id, action, name)

	hh, _ := hs.House(id)
	writeJSON(w, http.StatusOK, draftResponse{Action: action, Name: name, House: toResponse(hh)})
}

// Status reports the catalog loading state.
func (h *HouseHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status.Status())
}

// FetchLog lists the most recent upstream fetch attempts.
func (h *HouseHandler) FetchLog(w http.ResponseWriter, r *http.Request) {
	records, err := h.fetchLog.Recent(20)
	if err != nil {
		h.logger.Error("list fetch log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list fetches")
		return
	}
	if records == nil {
		records = []model.FetchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HouseHandler) writeHouse(w http.ResponseWriter, hs *store.HouseStore, id string, status int) {
	hh, err := hs.House(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}
	writeJSON(w, status, toResponse(hh))
}
