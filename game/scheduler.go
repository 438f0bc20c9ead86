package game

import (
	"sync"
	"time"
)

// TimerToken identifies a scheduled callback. The zero token is never issued.
type TimerToken uint64

// Scheduler runs callbacks after a delay. Cancel must guarantee that a
// callback which has not started yet never runs.
type Scheduler interface {
	ScheduleAfter(d time.Duration, fn func()) TimerToken
	Cancel(token TimerToken)
}

// TimerScheduler is the production Scheduler. Each timer runs in its own
// goroutine and exits on expiry or cancellation.
type TimerScheduler struct {
	mu      sync.Mutex
	next    TimerToken
	cancels map[TimerToken]chan struct{}
}

// NewTimerScheduler creates a TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{cancels: make(map[TimerToken]chan struct{})}
}

// ScheduleAfter runs fn once d has elapsed unless the token is cancelled first.
func (s *TimerScheduler) ScheduleAfter(d time.Duration, fn func()) TimerToken {
	s.mu.Lock()
	s.next++
	token := s.next
	cancel := make(chan struct{})
	s.cancels[token] = cancel
	s.mu.Unlock()

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			s.mu.Lock()
			_, live := s.cancels[token]
			delete(s.cancels, token)
			s.mu.Unlock()
			if live {
				fn()
			}
		case <-cancel:
		}
	}()
	return token
}

// Cancel stops a pending timer. Unknown or already fired tokens are ignored.
func (s *TimerScheduler) Cancel(token TimerToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[token]; ok {
		close(cancel)
		delete(s.cancels, token)
	}
}

// Pending returns the number of timers that have neither fired nor been cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}
