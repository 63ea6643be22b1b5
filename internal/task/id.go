package task

import "time"

// IDSource hands out creation-order ids: the current time in milliseconds,
// bumped past the last issued id so two tasks created in the same
// millisecond still get distinct, increasing ids.
type IDSource struct {
	now  func() time.Time
	last int64
}

// NewIDSource creates an id source; now defaults to time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns a fresh id greater than every id issued or observed so far.
func (s *IDSource) Next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe records ids loaded from storage so later ids never collide with them.
func (s *IDSource) Observe(list []Task) {
	for _, t := range list {
		if t.ID > s.last {
			s.last = t.ID
		}
	}
}
