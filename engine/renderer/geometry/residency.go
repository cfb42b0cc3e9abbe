package geometry

import "fmt"

// Residency describes whether a buffer's data has an up-to-date counterpart on the GPU.
type Residency int

const (
	// ResidencyAbsent means no GPU allocation exists.
	ResidencyAbsent Residency = iota
	// ResidencyResident means the GPU allocation matches the host data.
	ResidencyResident
	// ResidencyStale means a GPU allocation exists but the index data changed after it was made.
	ResidencyStale
)

func (r Residency) String() string {
	switch r {
	case ResidencyAbsent:
		return "absent"
	case ResidencyResident:
		return "resident"
	case ResidencyStale:
		return "stale"
	default:
		return fmt.Sprintf("Residency(%d)", int(r))
	}
}
