package robot

import "fmt"

// Leg is a named group of joints. The joint set depends on the profile.
type Leg struct {
	name   LegName
	joints map[JointRole]*Joint
}

func newLeg(name LegName) *Leg {
	return &Leg{name: name, joints: make(map[JointRole]*Joint)}
}

// Name returns the leg name.
func (l *Leg) Name() LegName { return l.name }

// Joint returns the joint with the given role.
func (l *Leg) Joint(role JointRole) (*Joint, bool) {
	j, ok := l.joints[role]
	return j, ok
}

func (l *Leg) roles() map[JointRole]bool {
	roles := make(map[JointRole]bool, len(l.joints))
	for r := range l.joints {
		roles[r] = true
	}
	return roles
}

// Selector names a group of legs.
type Selector string

const (
	SelectAll    Selector = "all"
	SelectLeft   Selector = "left"
	SelectRight  Selector = "right"
	SelectFront  Selector = "front"
	SelectCenter Selector = "center"
	SelectBack   Selector = "back"

	// Alternating tripods: one leg from each row, zig-zagging sides.
	SelectLeftRightLeft  Selector = "left_right_left"
	SelectRightLeftRight Selector = "right_left_right"
)

// SideSelector returns the selector for one side of the body.
func SideSelector(s Side) Selector {
	return Selector(s)
}

// RowSelector returns the selector for a leg pair.
func RowSelector(r Row) Selector {
	return Selector(r)
}

// LegSelector selects a single leg.
func LegSelector(n LegName) Selector {
	return Selector(n)
}

// Complement returns the tripod made of the other three legs. Only defined
// for the two tripod selectors.
func (s Selector) Complement() (Selector, bool) {
	switch s {
	case SelectLeftRightLeft:
		return SelectRightLeftRight, true
	case SelectRightLeftRight:
		return SelectLeftRightLeft, true
	}
	return "", false
}

// Legs resolves the selector to leg names in canonical order.
func (s Selector) Legs() ([]LegName, error) {
	var match func(LegName) bool
	switch s {
	case SelectAll:
		match = func(LegName) bool { return true }
	case SelectLeft, SelectRight:
		match = func(n LegName) bool { return n.Side() == Side(s) }
	case SelectFront, SelectCenter, SelectBack:
		match = func(n LegName) bool { return n.Row() == Row(s) }
	case SelectLeftRightLeft:
		return []LegName{LeftFront, RightCenter, LeftBack}, nil
	case SelectRightLeftRight:
		return []LegName{RightFront, LeftCenter, RightBack}, nil
	default:
		if LegName(s).Valid() {
			return []LegName{LegName(s)}, nil
		}
		return nil, fmt.Errorf("unknown leg selector %q", s)
	}

	var names []LegName
	for _, n := range AllLegs() {
		if match(n) {
			names = append(names, n)
		}
	}
	return names, nil
}
