package position

import (
	"sync"
	"time"
)

// Clock abstracts the engine's notion of now so a whole service day can be
// replayed at arbitrary speed.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// SimClock maps wall time onto a simulated timeline running at a
// configurable speed. Seek and SetSpeed rebase the mapping so the simulated
// time never jumps except when explicitly sought.
type SimClock struct {
	mutex    sync.Mutex
	baseReal time.Time
	baseSim  time.Time
	speed    float64
}

func NewSimClock(start time.Time, speed float64) *SimClock {
	if speed <= 0 {
		speed = 1
	}

	return &SimClock{
		baseReal: time.Now(),
		baseSim:  start,
		speed:    speed,
	}
}

func (c *SimClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.baseReal)
	return c.baseSim.Add(time.Duration(float64(elapsed) * c.speed))
}

// Seek jumps the simulated timeline to the given instant.
func (c *SimClock) Seek(to time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.baseReal = time.Now()
	c.baseSim = to
}

// SetSpeed changes the playback speed, rebasing so the current simulated
// instant is preserved.
func (c *SimClock) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.baseReal)
	c.baseSim = c.baseSim.Add(time.Duration(float64(elapsed) * c.speed))
	c.baseReal = time.Now()
	c.speed = speed
}

func (c *SimClock) Speed() float64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.speed
}
