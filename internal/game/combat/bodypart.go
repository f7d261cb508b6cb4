package combat

import "strings"

// BodyPartType is one of the four hit locations.
type BodyPartType int

const (
	Head BodyPartType = iota
	Thorax
	Arm
	Leg

	numBodyParts = 4
)

// BodyPartTypes returns every body part type in display order.
func BodyPartTypes() []BodyPartType {
	return []BodyPartType{Head, Thorax, Arm, Leg}
}

// String returns the display name of the part.
func (p BodyPartType) String() string {
	switch p {
	case Head:
		return "Head"
	case Thorax:
		return "Thorax"
	case Arm:
		return "Arm"
	case Leg:
		return "Leg"
	default:
		return "Unknown"
	}
}

// ParseBodyPart maps a case-insensitive part name to its type. Unknown names
// map to Thorax.
func ParseBodyPart(s string) BodyPartType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "head":
		return Head
	case "arm":
		return Arm
	case "leg":
		return Leg
	default:
		return Thorax
	}
}

// BodyPart tracks the hit points of one location.
// Invariant: 0 <= HP <= MaxHP.
type BodyPart struct {
	HP    int
	MaxHP int
}

// NewBodyPart returns an undamaged part with maxHP hit points.
func NewBodyPart(maxHP int) BodyPart {
	return BodyPart{HP: maxHP, MaxHP: maxHP}
}

// IsBlackedOut reports whether the part has no hit points left.
func (b BodyPart) IsBlackedOut() bool { return b.HP <= 0 }
