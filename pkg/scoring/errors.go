package scoring

import "errors"

var (
	// ErrNoFinishers is returned if points are requested for a race without
	// any finished result.
	ErrNoFinishers = errors.New("race has no finishers")
	// ErrStageOrder is returned if a season stage is run out of order.
	ErrStageOrder = errors.New("season stage out of order")
	// ErrDuplicateRacer is returned if a racer name occurs more than once.
	ErrDuplicateRacer = errors.New("duplicate racer")
	// ErrRosterMismatch is returned if a racer row does not provide one
	// entry per race.
	ErrRosterMismatch = errors.New("entries do not match races")
	// ErrNoArchive is returned if a season is built without prior archive.
	ErrNoArchive = errors.New("prior season archive required")
)
