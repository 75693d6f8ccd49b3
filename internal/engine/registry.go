package engine

import (
	"fmt"

	"deckdrill/internal/apperr"
	"deckdrill/internal/models"
)

// Registry maps mode identifiers to their engines. Built once at startup;
// duplicate registrations are a construction-time error.
type Registry struct {
	engines map[models.StudyMode]Engine
}

// NewRegistry builds a registry from the full engine set
func NewRegistry(engines ...Engine) (*Registry, error) {
	byMode := make(map[models.StudyMode]Engine, len(engines))
	for _, e := range engines {
		if _, exists := byMode[e.Mode()]; exists {
			return nil, fmt.Errorf("duplicate engine registration for mode %s", e.Mode())
		}
		byMode[e.Mode()] = e
	}
	return &Registry{engines: byMode}, nil
}

// Resolve looks up the engine for a mode. A miss is a configuration bug,
// not a recoverable business condition, so it surfaces as an internal error.
func (r *Registry) Resolve(mode models.StudyMode) (Engine, error) {
	e, ok := r.engines[mode]
	if !ok {
		return nil, apperr.Internal(fmt.Sprintf("no engine registered for mode %s", mode), nil)
	}
	return e, nil
}

// Modes returns the registered mode identifiers
func (r *Registry) Modes() []models.StudyMode {
	modes := make([]models.StudyMode, 0, len(r.engines))
	for mode := range r.engines {
		modes = append(modes, mode)
	}
	return modes
}
