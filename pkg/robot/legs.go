// Package robot models the hexapod's joints, legs and boards.
package robot

import "strings"

// LegName identifies one of the six legs.
type LegName string

// Leg names, side first then row.
const (
	LeftFront   LegName = "left_front"
	RightFront  LegName = "right_front"
	LeftCenter  LegName = "left_center"
	RightCenter LegName = "right_center"
	LeftBack    LegName = "left_back"
	RightBack   LegName = "right_back"
)

// AllLegs returns every leg in canonical write order: front pair, center pair,
// back pair, left before right.
func AllLegs() []LegName {
	return []LegName{
		LeftFront,
		RightFront,
		LeftCenter,
		RightCenter,
		LeftBack,
		RightBack,
	}
}

// Side of the body a leg is mounted on.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Row is the front-to-back position of a leg pair.
type Row string

const (
	Front  Row = "front"
	Center Row = "center"
	Back   Row = "back"
)

// Side returns the side the leg is mounted on.
func (n LegName) Side() Side {
	side, _, _ := strings.Cut(string(n), "_")
	return Side(side)
}

// Row returns the leg's row.
func (n LegName) Row() Row {
	_, row, _ := strings.Cut(string(n), "_")
	return Row(row)
}

// Valid reports whether n is one of the six canonical names.
func (n LegName) Valid() bool {
	for _, l := range AllLegs() {
		if l == n {
			return true
		}
	}
	return false
}

// JointRole names a joint within a leg.
type JointRole string

const (
	// Rotate swings the leg forward and back around the vertical axis.
	Rotate JointRole = "rotate"
	// Raise lifts the whole leg (reduced profile).
	Raise JointRole = "raise"
	// Upper is the femur joint (full profile).
	Upper JointRole = "upper"
	// Lower is the tibia joint, the one touching the ground (full profile).
	Lower JointRole = "lower"
)

// JointName is the servo name used in calibration files, e.g. "left_front_rotate".
func JointName(leg LegName, role JointRole) string {
	return string(leg) + "_" + string(role)
}

// SplitJointName splits a calibration servo name into leg and role.
// ok is false when the name does not start with a canonical leg name.
func SplitJointName(name string) (LegName, JointRole, bool) {
	for _, leg := range AllLegs() {
		prefix := string(leg) + "_"
		if strings.HasPrefix(name, prefix) {
			return leg, JointRole(strings.TrimPrefix(name, prefix)), true
		}
	}
	return "", "", false
}
