package util

import "github.com/google/uuid"

// NewID returns a random identifier used to tag runs in logs and archives.
func NewID() string { return uuid.NewString() }
