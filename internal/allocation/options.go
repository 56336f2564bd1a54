package allocation

// HeadcountBasis selects the number used to size a room's invigilator team.
type HeadcountBasis string

const (
	// HeadcountSeated uses the number of students actually seated in the room.
	HeadcountSeated HeadcountBasis = "seated"
	// HeadcountCapacity uses the room's nominal capacity.
	HeadcountCapacity HeadcountBasis = "capacity"
)

// Options tunes allocation behaviour.
type Options struct {
	// SortByRollNumber orders every course queue by roll number before seating.
	SortByRollNumber bool
	HeadcountBasis   HeadcountBasis
}

// DefaultOptions returns the options used when callers do not override them.
func DefaultOptions() Options {
	return Options{
		SortByRollNumber: true,
		HeadcountBasis:   HeadcountSeated,
	}
}

// ParseHeadcountBasis maps a config string onto a basis, falling back to seated.
func ParseHeadcountBasis(raw string) HeadcountBasis {
	if HeadcountBasis(raw) == HeadcountCapacity {
		return HeadcountCapacity
	}
	return HeadcountSeated
}
