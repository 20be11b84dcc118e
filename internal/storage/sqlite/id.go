package sqlite

import "github.com/google/uuid"

// IDs are generated in Go; sqlite has no native uuid function.
func newID() string {
	return uuid.NewString()
}
