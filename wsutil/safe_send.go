package wsutil

import "log/slog"

// SafeSend sends data to a channel without panicking if the channel is closed.
// If the channel is full or closed, the send is skipped and SafeSend reports
// false. Panics are recovered and logged for debugging.
func SafeSend(ch chan []byte, data []byte) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("SafeSend recovered panic", "tag", "ws", "panic", r)
			sent = false
		}
	}()
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}
