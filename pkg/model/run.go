package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// DbSeasonRun records a computation stored in the database.
type DbSeasonRun struct {
	ID        uuid.UUID
	Season    int
	Racers    int
	CreatedAt time.Time
}
