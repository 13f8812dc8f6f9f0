package service

import (
	"strings"

	"github.com/google/uuid"
)

// NewOrderNumber returns "ORD-" followed by 8 upper-case hex characters of a
// random UUID. Uniqueness is enforced by the database.
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:8])
}
