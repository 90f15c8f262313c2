// Package fps provides a frame-rate monitor for interactive front-ends.
package fps

import (
	"time"

	"github.com/ottmarv/gotile/pkg/log"
)

// Monitor counts frames and reports the rate through a logger once per
// second.
type Monitor struct {
	log    log.Logger
	frames int
	last   time.Time
}

// New returns a monitor reporting through l.
func New(l log.Logger) *Monitor {
	return &Monitor{log: l, last: time.Now()}
}

// Update records one completed frame, emitting the rate when a second has
// elapsed.
func (m *Monitor) Update() {
	m.frames++
	if elapsed := time.Since(m.last); elapsed >= time.Second {
		m.log.Infof("fps: %.1f", float64(m.frames)/elapsed.Seconds())
		m.frames = 0
		m.last = time.Now()
	}
}
