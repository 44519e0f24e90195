package contract

import (
	"encoding/json"
	"strings"
)

// SearchQuery is what the user submits. Both fields travel to the backend
// exactly as entered.
type SearchQuery struct {
	Role     string `json:"role" validate:"required"`
	Location string `json:"location"`
}

// NewSearchQuery builds a query from the raw form values.
func NewSearchQuery(role, location string) SearchQuery {
	return SearchQuery{Role: role, Location: location}
}

// Validate reports a *ValidationError when the role is the empty string.
func (q SearchQuery) Validate() error {
	return validateStruct(q)
}

// MarshalJSON encodes a blank location as null. A non-blank location is sent
// unmodified.
func (q SearchQuery) MarshalJSON() ([]byte, error) {
	wire := struct {
		Role     string  `json:"role"`
		Location *string `json:"location"`
	}{Role: q.Role}
	if strings.TrimSpace(q.Location) != "" {
		loc := q.Location
		wire.Location = &loc
	}
	return json.Marshal(wire)
}
