package store

import (
	"errors"
	"strings"
	"sync"

	"github.com/dukerupert/houseboard/internal/house"
	"github.com/dukerupert/houseboard/internal/model"
)

var ErrHouseNotFound = errors.New("house not found")

// HouseStore is one session's house collection together with its search
// terms. Every mutation swaps in a new slice; snapshots handed out earlier
// are never written to.
type HouseStore struct {
	mu          sync.RWMutex
	houses      []model.House
	loaded      bool
	houseSearch string
	traitSearch map[string]string
}

func NewHouseStore() *HouseStore {
	return &HouseStore{
		houses:      []model.House{},
		traitSearch: make(map[string]string),
	}
}

// Load replaces the whole collection.
func (s *HouseStore) Load(houses []model.House) {
	next := make([]model.House, 0, len(houses))
	for _, h := range houses {
		next = append(next, house.Clone(h))
	}

	s.mu.Lock()
	s.houses = next
	s.loaded = true
	s.mu.Unlock()
}

// Loaded reports whether Load has been called.
func (s *HouseStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Houses returns the current snapshot.
func (s *HouseStore) Houses() []model.House {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.houses
}

func (s *HouseStore) House(id string) (model.House, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.houses {
		if h.ID == id {
			return h, nil
		}
	}
	return model.House{}, ErrHouseNotFound
}

func (s *HouseStore) FilterByName(term string) []model.House {
	return house.FilterByName(s.Houses(), term)
}

func (s *HouseStore) SetHouseSearch(term string) {
	s.mu.Lock()
	s.houseSearch = strings.ToLower(term)
	s.mu.Unlock()
}

func (s *HouseStore) HouseSearch() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.houseSearch
}

// SetTraitSearch records the trait search term (the card's draft) for a house.
func (s *HouseStore) SetTraitSearch(houseID, term string) {
	s.mu.Lock()
	if term == "" {
		delete(s.traitSearch, houseID)
	} else {
		s.traitSearch[houseID] = term
	}
	s.mu.Unlock()
}

func (s *HouseStore) TraitSearch(houseID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.traitSearch[houseID]
}

// FilteredTraits returns the house's traits narrowed by its trait search term.
func (s *HouseStore) FilteredTraits(houseID string) ([]model.Trait, error) {
	h, err := s.House(houseID)
	if err != nil {
		return nil, err
	}
	return house.FilterTraits(h.Traits, s.TraitSearch(houseID)), nil
}

// AddTrait appends rawName to the house unless it is blank or already
// present. A non-blank name clears the house's trait search term, even when
// it turns out to be a duplicate.
func (s *HouseStore) AddTrait(houseID, rawName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(houseID)
	if i < 0 {
		return false, ErrHouseNotFound
	}
	if strings.TrimSpace(rawName) == "" {
		return false, nil
	}

	delete(s.traitSearch, houseID)
	updated, changed := house.AddTrait(s.houses[i], rawName)
	if changed {
		s.replace(i, updated)
	}
	return changed, nil
}

// RemoveTrait drops every trait on the house matching name case-insensitively.
func (s *HouseStore) RemoveTrait(houseID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(houseID)
	if i < 0 {
		return false, ErrHouseNotFound
	}

	updated, changed := house.RemoveTrait(s.houses[i], name)
	if changed {
		s.replace(i, updated)
	}
	return changed, nil
}

// SubmitDraft applies a card draft: blank leaves the house and its trait
// search term untouched, an existing name is removed, anything else is
// added. Add and remove clear the trait search term.
func (s *HouseStore) SubmitDraft(houseID, draft string) (house.Action, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(houseID)
	if i < 0 {
		return house.ActionNone, "", ErrHouseNotFound
	}

	action, name := house.ResolveDraft(s.houses[i].Traits, draft)
	if action == house.ActionNone {
		return action, name, nil
	}
	delete(s.traitSearch, houseID)

	switch action {
	case house.ActionAdd:
		updated, _ := house.AddTrait(s.houses[i], name)
		s.replace(i, updated)
	case house.ActionRemove:
		updated, _ := house.RemoveTrait(s.houses[i], name)
		s.replace(i, updated)
	}
	return action, name, nil
}

func (s *HouseStore) indexOf(id string) int {
	for i, h := range s.houses {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// replace must be called with mu held.
func (s *HouseStore) replace(i int, h model.House) {
	next := make([]model.House, len(s.houses))
	copy(next, s.houses)
	next[i] = h
	s.houses = next
}
