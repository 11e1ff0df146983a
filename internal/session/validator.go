package session

import (
	"errors"

	"github.com/rs/zerolog"
)

// Validator decides from store contents alone whether the session is
// usable. It never touches the network; a session the server has already
// expired is caught by the transport when a request is rejected.
type Validator struct {
	store  Store
	logger zerolog.Logger
}

// NewValidator creates a validator over store
func NewValidator(store Store, logger zerolog.Logger) *Validator {
	return &Validator{store: store, logger: logger}
}

// Check reports whether a complete session is stored and, when role is not
// empty, whether its profile carries role. A malformed stored session is
// cleared and reported invalid. Storage faults are returned.
func (v *Validator) Check(role string) (bool, error) {
	s, ok, err := v.store.Read()
	if err != nil {
		if errors.Is(err, ErrMalformedSession) {
			v.logger.Warn().Err(err).Msg("Clearing unreadable session")
			if clearErr := v.store.Clear(); clearErr != nil {
				return false, clearErr
			}
			return false, nil
		}
		return false, err
	}

	if !ok || !s.complete() {
		return false, nil
	}

	if role != "" && !s.Profile.HasRole(role) {
		return false, nil
	}

	return true, nil
}

// IsValid is Check with storage faults logged and treated as invalid
func (v *Validator) IsValid(role string) bool {
	valid, err := v.Check(role)
	if err != nil {
		v.logger.Error().Err(err).Msg("Failed to read session")
		return false
	}
	return valid
}
