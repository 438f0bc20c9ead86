package terminal

import "errors"

var errSessionClosed = errors.New("session closed")
