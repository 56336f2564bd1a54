package models

import "time"

// Classroom is an exam hall laid out as rows of bench groups.
type Classroom struct {
	ID              string                 `db:"id" json:"id" yaml:"id"`
	Name            string                 `db:"name" json:"name" yaml:"name"`
	Building        string                 `db:"building" json:"building" yaml:"building"`
	Rows            int                    `db:"row_count" json:"rows" yaml:"rows"`
	Columns         int                    `db:"column_count" json:"columns" yaml:"columns"`
	BenchCapacity   int                    `db:"bench_capacity" json:"bench_capacity" yaml:"bench_capacity"`
	BenchCapacities IntList                `db:"bench_capacities" json:"bench_capacities,omitempty" yaml:"bench_capacities,omitempty"`
	Unavailability  SlotUnavailabilityList `db:"unavailability" json:"unavailability" yaml:"unavailability"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt       time.Time              `db:"updated_at" json:"updated_at" yaml:"-"`
}

// Benches returns the number of benches in the room.
func (c Classroom) Benches() int {
	return c.Rows * c.Columns
}

// BenchSize returns the seat count of the bench at a row-major index.
func (c Classroom) BenchSize(index int) int {
	if len(c.BenchCapacities) > 0 {
		if index < 0 || index >= len(c.BenchCapacities) {
			return 0
		}
		return c.BenchCapacities[index]
	}
	return c.BenchCapacity
}

// Capacity returns the total number of seats in the room.
func (c Classroom) Capacity() int {
	if len(c.BenchCapacities) > 0 {
		total := 0
		for _, size := range c.BenchCapacities {
			total += size
		}
		return total
	}
	return c.Rows * c.Columns * c.BenchCapacity
}

// ClassroomFilter defines filter criteria for listing classrooms.
type ClassroomFilter struct {
	Building  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
