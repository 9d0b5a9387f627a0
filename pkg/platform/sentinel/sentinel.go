package sentinel

import "errors"

// Store-level facts. Stores return these (optionally wrapped with %w) and
// services translate them into domain errors:
//   - ErrNotFound: no row/entry for the key
//   - ErrAlreadyUsed: a unique key (claim id, agreement claim id) is taken
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
