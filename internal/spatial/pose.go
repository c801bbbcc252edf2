package spatial

import "github.com/golang/geo/r3"

// Pose is the listener's head position and orientation in world space.
// Position is in meters, Orientation rotates head frame to world frame.
type Pose struct {
	Position    r3.Vector
	Orientation Quaternion
}

func DefaultPose() Pose {
	return Pose{
		Position:    r3.Vector{Z: 1.6},
		Orientation: Identity(),
	}
}
