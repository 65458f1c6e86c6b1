package store

import (
	"sync"

	"github.com/dukerupert/houseboard/internal/model"
)

// SessionHouses hands every browser session its own HouseStore. Stores
// created before the catalog arrives start empty and are loaded by Seed.
type SessionHouses struct {
	mu      sync.Mutex
	catalog []model.House
	seeded  bool
	stores  map[string]*HouseStore
}

func NewSessionHouses() *SessionHouses {
	return &SessionHouses{stores: make(map[string]*HouseStore)}
}

// Get returns the store for a session key, creating it on first use.
func (r *SessionHouses) Get(key string) *HouseStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hs, ok := r.stores[key]; ok {
		return hs
	}
	hs := NewHouseStore()
	if r.seeded {
		hs.Load(r.catalog)
	}
	r.stores[key] = hs
	return hs
}

// Seed records the fetched catalog and loads it into every store that has
// not been loaded yet.
func (r *SessionHouses) Seed(houses []model.House) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = houses
	r.seeded = true
	for _, hs := range r.stores {
		if !hs.Loaded() {
			hs.Load(houses)
		}
	}
}

func (r *SessionHouses) Drop(key string) {
	r.mu.Lock()
	delete(r.stores, key)
	r.mu.Unlock()
}

func (r *SessionHouses) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
