package model

import "github.com/google/uuid"

// GenerateID creates a new opaque record ID.
func GenerateID() string {
	return uuid.New().String()
}
