package combat

// Distance is the ordinal range band shared by everyone in an engagement.
type Distance int

const (
	Close Distance = iota
	Medium
	Far
)

// String returns the display name of the band.
func (d Distance) String() string {
	switch d {
	case Close:
		return "Close"
	case Medium:
		return "Medium"
	case Far:
		return "Far"
	default:
		return "Unknown"
	}
}

// Closer returns the next band toward Close and whether a move was possible.
func (d Distance) Closer() (Distance, bool) {
	if d <= Close {
		return d, false
	}
	return d - 1, true
}

// Further returns the next band toward Far and whether a move was possible.
func (d Distance) Further() (Distance, bool) {
	if d >= Far {
		return d, false
	}
	return d + 1, true
}
