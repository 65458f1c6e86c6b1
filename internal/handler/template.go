package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dukerupert/houseboard/internal/loader"
	"github.com/dukerupert/houseboard/internal/metrics"
	"github.com/dukerupert/houseboard/internal/store"
	ws "github.com/dukerupert/houseboard/internal/websocket"
	"github.com/dukerupert/houseboard/web"
)

// TemplateHandler renders the board page and its HTMX partials.
type TemplateHandler struct {
	status    StatusSource
	templates *template.Template
	notify    changeNotifier
	logger    *slog.Logger
}

func NewTemplateHandler(status StatusSource, hub *ws.Hub, m *metrics.Metrics, logger *slog.Logger) *TemplateHandler {
	tmpl := template.Must(template.ParseFS(web.Templates, "templates/*.html"))
	return &TemplateHandler{
		status:    status,
		templates: tmpl,
		notify:    changeNotifier{hub: hub, metrics: m},
		logger:    logger,
	}
}

type boardData struct {
	Title       string
	HouseSearch string
	State       loader.State
	Loading     bool
	Cards       []houseCard
}

func (h *TemplateHandler) Board(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	h.render(w, "layout", h.boardData(hs, hs.HouseSearch()))
}

// HouseList filters the board by ?q= and remembers the term for the session.
func (h *TemplateHandler) HouseList(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	hs.SetHouseSearch(r.URL.Query().Get("q"))
	h.render(w, "house-list", h.boardData(hs, hs.HouseSearch()))
}

func (h *TemplateHandler) HouseCard(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	hh, err := hs.House(id)
	if errors.Is(err, store.ErrHouseNotFound) {
		http.Error(w, "house not found", http.StatusNotFound)
		return
	}
	h.render(w, "house-card", newHouseCard(hh, hs.TraitSearch(id)))
}

// TraitSearch stores the card's draft as its trait search term and renders
// the narrowed tag list.
func (h *TemplateHandler) TraitSearch(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	hh, err := hs.House(id)
	if errors.Is(err, store.ErrHouseNotFound) {
		http.Error(w, "house not found", http.StatusNotFound)
		return
	}

	draft := r.URL.Query().Get("draft")
	hs.SetTraitSearch(id, draft)
	h.render(w, "trait-list", newHouseCard(hh, draft))
}

// TraitSubmit handles the card's + button and re-renders the whole card with
// the draft cleared.
func (h *TemplateHandler) TraitSubmit(w http.ResponseWriter, r *http.Request) {
	hs, ok := houses(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	action, name, err := hs.SubmitDraft(id, r.PostFormValue("draft"))
	if errors.Is(err, store.ErrHouseNotFound) {
		http.Error(w, "house not found", http.StatusNotFound)
		return
	}
	h.notify.traitChanged(r, id, action, name)

	hh, _ := hs.House(id)
	h.render(w, "house-card", newHouseCard(hh, hs.TraitSearch(id)))
}

func (h *TemplateHandler) boardData(hs *store.HouseStore, term string) boardData {
	st := h.status.Status()
	filtered := hs.FilterByName(term)
	cards := make([]houseCard, 0, len(filtered))
	for _, hh := range filtered {
		cards = append(cards, newHouseCard(hh, hs.TraitSearch(hh.ID)))
	}
	return boardData{
		Title:       "Houses",
		HouseSearch: term,
		State:       st.State,
		Loading:     !hs.Loaded() && (st.State == loader.StateLoading || st.State == loader.StateIdle),
		Cards:       cards,
	}
}

func (h *TemplateHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
