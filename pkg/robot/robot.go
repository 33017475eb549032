package robot

import (
	"errors"
	"fmt"
	"sort"
)

// Profile is the joint topology of a robot.
type Profile int

const (
	// ProfileReduced legs have rotate + raise joints (12 servos).
	ProfileReduced Profile = iota + 1
	// ProfileFull legs have rotate + upper + lower joints (18 servos).
	ProfileFull
)

func (p Profile) String() string {
	switch p {
	case ProfileReduced:
		return "reduced"
	case ProfileFull:
		return "full"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// ParseProfile parses "reduced" or "full".
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "reduced":
		return ProfileReduced, nil
	case "full":
		return ProfileFull, nil
	}
	return 0, configErrorf("unknown profile %q", s)
}

// Joints returns the joint roles every leg must have in this profile.
func (p Profile) Joints() []JointRole {
	switch p {
	case ProfileReduced:
		return []JointRole{Rotate, Raise}
	case ProfileFull:
		return []JointRole{Rotate, Upper, Lower}
	}
	return nil
}

// GroundJoint returns the role whose percent decides whether a foot is on
// the ground: 0 is tucked up, 100 fully extended.
func (p Profile) GroundJoint() JointRole {
	if p == ProfileFull {
		return Lower
	}
	return Raise
}

func (p Profile) matches(roles map[JointRole]bool) bool {
	want := p.Joints()
	if len(roles) != len(want) {
		return false
	}
	for _, r := range want {
		if !roles[r] {
			return false
		}
	}
	return true
}

// Posture is the body height of a full profile robot.
type Posture int

const (
	PostureResting Posture = iota
	PostureShort
	PostureSquare
	PostureTall
)

func (p Posture) String() string {
	switch p {
	case PostureResting:
		return "resting"
	case PostureShort:
		return "short"
	case PostureSquare:
		return "square"
	case PostureTall:
		return "tall"
	default:
		return fmt.Sprintf("Posture(%d)", int(p))
	}
}

// Height is the body height of a reduced profile robot.
type Height int

const (
	HeightLowered Height = iota
	HeightCentered
	HeightRaised
)

func (h Height) String() string {
	switch h {
	case HeightLowered:
		return "lowered"
	case HeightCentered:
		return "centered"
	case HeightRaised:
		return "raised"
	default:
		return fmt.Sprintf("Height(%d)", int(h))
	}
}

// Layout is the last bulk arrangement of the rotate joints.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutAligned
	LayoutSpread
	LayoutCentered
)

func (l Layout) String() string {
	switch l {
	case LayoutAligned:
		return "aligned"
	case LayoutSpread:
		return "spread"
	case LayoutCentered:
		return "centered"
	default:
		return "unknown"
	}
}

type board struct {
	config BoardConfig
	sink   Sink
}

// Robot owns every board, leg and joint. Posture, height and layout are what
// this process last commanded, not read from hardware.
//
// A Robot is not safe for concurrent use; callers serialize maneuvers.
type Robot struct {
	profile Profile
	boards  map[uint16]*board
	order   []uint16
	legs    map[LegName]*Leg
	joints  map[string]*Joint

	posture Posture
	height  Height
	layout  Layout
}

// New builds a robot from calibration data, opening each board with open.
// It fails with a ConfigurationError when the servos do not describe six
// legs of a single profile.
func New(cfg *Config, open Opener) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if open == nil {
		open = OpenBoard
	}

	r := &Robot{
		boards: make(map[uint16]*board),
		legs:   make(map[LegName]*Leg),
		joints: make(map[string]*Joint),
	}
	for _, name := range AllLegs() {
		r.legs[name] = newLeg(name)
	}

	for _, bc := range cfg.Boards {
		for _, sc := range bc.Servos {
			leg, role, ok := SplitJointName(sc.Name)
			if !ok {
				return nil, configErrorf("servo %s does not belong to a leg", sc.Name)
			}
			if _, dup := r.legs[leg].joints[role]; dup {
				return nil, configErrorf("leg %s has two %s joints", leg, role)
			}
			// Sink is attached once the board is open.
			r.legs[leg].joints[role] = nil
		}
	}

	profile, err := detectProfile(r.legs)
	if err != nil {
		return nil, err
	}
	if cfg.Profile != "" {
		want, _ := ParseProfile(cfg.Profile)
		if want != profile {
			return nil, configErrorf("calibration declares %s profile but servos describe %s", want, profile)
		}
	}
	r.profile = profile

	for _, bc := range cfg.Boards {
		sink, err := open(bc)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open board 0x%02x: %w", bc.Address, err)
		}
		r.boards[bc.Address] = &board{config: bc, sink: sink}
		r.order = append(r.order, bc.Address)

		for _, sc := range bc.Servos {
			j := NewJoint(sc, sink)
			r.legs[j.Leg()].joints[j.Role()] = j
			r.joints[j.Name()] = j
		}
	}

	log.WithField("profile", profile).WithField("boards", len(r.boards)).Info("robot ready")
	return r, nil
}

func detectProfile(legs map[LegName]*Leg) (Profile, error) {
	var profile Profile
	for _, name := range AllLegs() {
		roles := legs[name].roles()
		if len(roles) == 0 {
			return 0, configErrorf("no servos found for leg %s", name)
		}

		var p Profile
		switch {
		case ProfileReduced.matches(roles):
			p = ProfileReduced
		case ProfileFull.matches(roles):
			p = ProfileFull
		default:
			return 0, configErrorf("leg %s has joints %v, want %v or %v",
				name, sortedRoles(roles), ProfileReduced.Joints(), ProfileFull.Joints())
		}

		if profile != 0 && p != profile {
			return 0, configErrorf("leg %s is %s but other legs are %s", name, p, profile)
		}
		profile = p
	}
	return profile, nil
}

func sortedRoles(roles map[JointRole]bool) []JointRole {
	out := make([]JointRole, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Profile returns the robot's joint topology.
func (r *Robot) Profile() Profile { return r.profile }

// Leg returns the leg with the given name.
func (r *Robot) Leg(name LegName) (*Leg, bool) {
	l, ok := r.legs[name]
	return l, ok
}

// Select returns the legs denoted by sel in canonical order.
func (r *Robot) Select(sel Selector) ([]*Leg, error) {
	names, err := sel.Legs()
	if err != nil {
		return nil, err
	}
	legs := make([]*Leg, len(names))
	for i, n := range names {
		legs[i] = r.legs[n]
	}
	return legs, nil
}

// Joint returns a joint by calibration name.
func (r *Robot) Joint(name string) (*Joint, bool) {
	j, ok := r.joints[name]
	return j, ok
}

// Joints returns all joints, leg by leg in canonical order.
func (r *Robot) Joints() []*Joint {
	joints := make([]*Joint, 0, len(r.joints))
	for _, name := range AllLegs() {
		for _, role := range r.profile.Joints() {
			joints = append(joints, r.legs[name].joints[role])
		}
	}
	return joints
}

// Posture returns the last commanded posture (full profile).
func (r *Robot) Posture() Posture { return r.posture }

// SetPosture records the commanded posture.
func (r *Robot) SetPosture(p Posture) { r.posture = p }

// Height returns the last commanded height (reduced profile).
func (r *Robot) Height() Height { return r.height }

// SetHeight records the commanded height.
func (r *Robot) SetHeight(h Height) { r.height = h }

// Layout returns the last commanded rotate layout.
func (r *Robot) Layout() Layout { return r.layout }

// SetLayout records the commanded rotate layout.
func (r *Robot) SetLayout(l Layout) { r.layout = l }

// Config exports the current calibration, including any changes made
// through the joints, in the file's board order.
func (r *Robot) Config() *Config {
	cfg := &Config{Profile: r.profile.String()}
	for _, addr := range r.order {
		b := r.boards[addr]
		bc := b.config
		bc.Servos = make([]ServoConfig, 0, len(b.config.Servos))
		for _, sc := range b.config.Servos {
			bc.Servos = append(bc.Servos, r.joints[sc.Name].Calibration())
		}
		cfg.Boards = append(cfg.Boards, bc)
	}
	return cfg
}

// Close closes every board sink that needs closing.
func (r *Robot) Close() error {
	var errs []error
	for _, addr := range r.order {
		if err := closeSink(r.boards[addr].sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
