package house

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/houseboard/internal/model"
)

// IDFunc generates trait ids. Tests swap it for a deterministic sequence.
var IDFunc = uuid.NewString

// AddTrait returns a copy of h with a new trait appended. The second result
// is false when nothing changed: the trimmed name is empty or the house
// already carries a trait with that name in any case.
func AddTrait(h model.House, rawName string) (model.House, bool) {
	name := strings.TrimSpace(rawName)
	if name == "" || HasTrait(h.Traits, name) {
		return h, false
	}

	traits := make([]model.Trait, len(h.Traits), len(h.Traits)+1)
	copy(traits, h.Traits)
	h.Traits = append(traits, model.Trait{ID: IDFunc(), Name: name})
	return h, true
}

// RemoveTrait returns a copy of h without any trait matching name
// case-insensitively. The second result reports whether a trait was removed.
func RemoveTrait(h model.House, name string) (model.House, bool) {
	traits := make([]model.Trait, 0, len(h.Traits))
	for _, t := range h.Traits {
		if !strings.EqualFold(t.Name, name) {
			traits = append(traits, t)
		}
	}
	if len(traits) == len(h.Traits) {
		return h, false
	}
	h.Traits = traits
	return h, true
}

// Action is what submitting a draft does to a house.
type Action string

const (
	ActionNone   Action = "none"
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// ResolveDraft decides what a submitted draft means for the given traits:
// blank drafts do nothing, a name already present removes it, anything else
// adds it. The returned name is the trimmed draft.
func ResolveDraft(traits []model.Trait, draft string) (Action, string) {
	name := strings.TrimSpace(draft)
	switch {
	case name == "":
		return ActionNone, ""
	case HasTrait(traits, name):
		return ActionRemove, name
	default:
		return ActionAdd, name
	}
}

// Clone returns a deep copy of h so callers can hand it out without sharing
// the trait and colour backing arrays.
func Clone(h model.House) model.House {
	h.Colors = append([]string{}, h.Colors...)
	h.Traits = append([]model.Trait{}, h.Traits...)
	return h
}
