package api

import (
	"github.com/google/uuid"
)

// parseUUID validates path ids before they reach a store.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
