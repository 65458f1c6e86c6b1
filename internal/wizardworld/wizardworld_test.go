package wizardworld

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const housesPayload = `[
	{
		"id": "0367baf3-1cb6-4baf-bede-48e17e1cd005",
		"name": "Gryffindor",
		"houseColours": "Scarlet and gold",
		"founder": "Godric Gryffindor",
		"animal": "Lion",
		"traits": [
			{"id": "t1", "name": "Courage"},
			{"id": "t2", "name": "Chivalry"}
		]
	},
	{
		"id": "805fd37a-65ae-4fe5-b336-d767b8b7c73a",
		"name": "Ravenclaw",
		"houseColours": "Blue, bronze",
		"founder": "Rowena Ravenclaw",
		"animal": "Eagle",
		"traits": []
	}
]`

func TestFetchHouses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/houses" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(housesPayload))
	}))
	defer server.Close()

	houses, err := NewClient(server.URL + "/").FetchHouses(context.Background())
	if err != nil {
		t.Fatalf("fetch houses: %v", err)
	}
	if len(houses) != 2 {
		t.Fatalf("expected 2 houses, got %d", len(houses))
	}

	g := houses[0]
	if g.Name != "Gryffindor" || g.Animal != "Lion" || g.Founder != "Godric Gryffindor" {
		t.Errorf("unexpected house: %+v", g)
	}
	if len(g.Colors) != 2 || g.Colors[0] != "scarlet" || g.Colors[1] != "gold" {
		t.Errorf("colors = %v, want [scarlet gold]", g.Colors)
	}
	if len(g.Traits) != 2 || g.Traits[0].Name != "Courage" || g.Traits[0].ID != "t1" {
		t.Errorf("traits = %+v", g.Traits)
	}

	r := houses[1]
	if len(r.Colors) != 2 || r.Colors[0] != "blue" || r.Colors[1] != "bronze" {
		t.Errorf("colors = %v, want [blue bronze]", r.Colors)
	}
	if r.Traits == nil {
		t.Error("expected non-nil empty traits")
	}
}

func TestFetchHousesBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).FetchHouses(context.Background()); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestFetchHousesBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).FetchHouses(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchHousesUnreachable(t *testing.T) {
	if _, err := NewClient("http://127.0.0.1:1").FetchHouses(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestNewClientDefaultURL(t *testing.T) {
	c := NewClient("")
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}
