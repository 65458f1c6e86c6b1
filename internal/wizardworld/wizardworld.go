package wizardworld

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/houseboard/internal/house"
	"github.com/dukerupert/houseboard/internal/model"
)

const DefaultBaseURL = "https://wizard-world-api.herokuapp.com"

// Client reads the house catalog from the Wizard World API.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client for the given base URL. An empty URL uses DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type apiTrait struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiHouse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Animal       string     `json:"animal"`
	HouseColours string     `json:"houseColours"`
	Founder      string     `json:"founder"`
	Traits       []apiTrait `json:"traits"`
}

// FetchHouses performs a single GET of the house list.
func (c *Client) FetchHouses(ctx context.Context) ([]model.House, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/houses", nil)
	if err != nil {
		return nil, fmt.Errorf("build houses request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("houses API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("houses API returned status %d", resp.StatusCode)
	}

	var payload []apiHouse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode houses response: %w", err)
	}

	houses := make([]model.House, 0, len(payload))
	for _, h := range payload {
		houses = append(houses, toHouse(h))
	}
	return houses, nil
}

func toHouse(h apiHouse) model.House {
	traits := make([]model.Trait, 0, len(h.Traits))
	for _, t := range h.Traits {
		traits = append(traits, model.Trait{ID: t.ID, Name: t.Name})
	}
	return model.House{
		ID:      h.ID,
		Name:    h.Name,
		Animal:  h.Animal,
		Colors:  house.SplitColours(h.HouseColours),
		Founder: h.Founder,
		Traits:  traits,
	}
}
