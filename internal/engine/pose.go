package engine

import (
	"sync"

	"github.com/san-kum/soundscape/internal/spatial"
)

// SharedPose publishes the fused pose from the control task to the
// audio task. The audio task must never block on it: TryLoad falls back
// to the caller's last snapshot when the lock is contended, which keeps
// the callback hard real-time at the cost of a one-tick-stale pose.
// Either way the snapshot is torn-free.
type SharedPose struct {
	mu   sync.Mutex
	pose spatial.Pose
}

func NewSharedPose(initial spatial.Pose) *SharedPose {
	return &SharedPose{pose: initial}
}

func (s *SharedPose) Store(p spatial.Pose) {
	s.mu.Lock()
	s.pose = p
	s.mu.Unlock()
}

// Load blocks for the (tiny) critical section; control-plane callers
// use this.
func (s *SharedPose) Load() spatial.Pose {
	s.mu.Lock()
	p := s.pose
	s.mu.Unlock()
	return p
}

// TryLoad returns the current pose if the lock is free, refreshing
// *last; otherwise it returns *last unchanged.
func (s *SharedPose) TryLoad(last *spatial.Pose) spatial.Pose {
	if s.mu.TryLock() {
		*last = s.pose
		s.mu.Unlock()
	}
	return *last
}
