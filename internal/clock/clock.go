package clock

import "time"

type Service interface {
	Now() time.Time
}

type clockService struct{}

func NewClockService() Service {
	return &clockService{}
}

func (c *clockService) Now() time.Time {
	return time.Now()
}

type mockService struct {
	now time.Time
}

// TimeSetterFn advances a mock clock to the given instant.
type TimeSetterFn func(now time.Time)

// NewMockService returns a Service frozen at the given instant.
func NewMockService(now time.Time) Service {
	return &mockService{
		now: now,
	}
}

// NewMockServiceNow returns a Service starting at the current time and a
// setter to move it.
func NewMockServiceNow() (Service, TimeSetterFn) {
	m := &mockService{
		now: time.Now(),
	}
	return m, func(now time.Time) {
		m.now = now
	}
}

func (m *mockService) Now() time.Time {
	return m.now
}
