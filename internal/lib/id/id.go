package id

import (
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
)

// Entity ids are prefixed cuids. Cuids embed a timestamp and a process
// counter, so ids within a family sort in creation order.

func NewUserID() string {
	return "u_" + cuid.New()
}

func NewSessionID() string {
	return "us_" + cuid.New()
}

func NewTrackID() string {
	return cuid.New()
}

// NewFamilyID identifies one login event and every session descended from it.
func NewFamilyID() string {
	return uuid.NewString()
}
