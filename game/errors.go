package game

import "errors"

// ErrConfiguration is returned when the deck configuration cannot produce a
// valid board. It is fatal at session construction.
var ErrConfiguration = errors.New("invalid deck configuration")
