package irc

import "time"

// ReconnectState tracks whether and how long to wait before the next
// reconnection attempt. It is owned by the connection goroutine.
type ReconnectState struct {
	allowReconnect bool
	delay          time.Duration
	base           time.Duration
	step           time.Duration
	max            time.Duration
}

// NewReconnectState returns a state that allows reconnecting with no initial
// delay. Base is the delay restored by a welcome reply, step the growth per
// attempt and max the cap.
func NewReconnectState(base, step, max time.Duration) *ReconnectState {
	return &ReconnectState{
		allowReconnect: true,
		base:           base,
		step:           step,
		max:            max,
	}
}

// AllowReconnect reports whether another connection attempt is permitted.
func (s *ReconnectState) AllowReconnect() bool { return s.allowReconnect }

// Delay returns the delay the next attempt will wait.
func (s *ReconnectState) Delay() time.Duration { return s.delay }

// NextDelay returns the delay to wait before the coming attempt and grows
// the delay for the one after it, clamped to max.
func (s *ReconnectState) NextDelay() time.Duration {
	d := s.delay
	s.delay = min(s.delay+s.step, s.max)
	return d
}

// Welcome resets the delay to base after the server accepted the session.
func (s *ReconnectState) Welcome() {
	s.delay = s.base
}

// Reject permanently disables reconnection.
func (s *ReconnectState) Reject() {
	s.allowReconnect = false
}
