package house

import (
	"strings"

	"github.com/dukerupert/houseboard/internal/model"
)

// FilterByName returns the houses whose name contains term, ignoring case.
// An empty term matches every house. The input slice is never modified.
func FilterByName(houses []model.House, term string) []model.House {
	term = strings.ToLower(term)
	out := make([]model.House, 0, len(houses))
	for _, h := range houses {
		if strings.Contains(strings.ToLower(h.Name), term) {
			out = append(out, h)
		}
	}
	return out
}

// FilterTraits returns the traits whose name contains term, ignoring case,
// in their original order.
func FilterTraits(traits []model.Trait, term string) []model.Trait {
	term = strings.ToLower(term)
	out := make([]model.Trait, 0, len(traits))
	for _, t := range traits {
		if strings.Contains(strings.ToLower(t.Name), term) {
			out = append(out, t)
		}
	}
	return out
}

// HasTrait reports whether traits contains name under case-insensitive comparison.
func HasTrait(traits []model.Trait, name string) bool {
	for _, t := range traits {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}
