package wsutil

import "testing"

func TestSafeSend(t *testing.T) {
	ch := make(chan []byte, 1)
	if !SafeSend(ch, []byte("a")) {
		t.Error("send to a channel with room should succeed")
	}
	if SafeSend(ch, []byte("b")) {
		t.Error("send to a full channel should be skipped")
	}
	close(ch)
	if SafeSend(ch, []byte("c")) {
		t.Error("send to a closed channel should be skipped")
	}
}
