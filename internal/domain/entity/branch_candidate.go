package entity

// Classification is the tri-state suitability of a doctor for a request
type Classification string

const (
	// ClassificationGreen: available, specialization and schedule match
	ClassificationGreen Classification = "GREEN"
	// ClassificationYellow: available but only one of specialization/schedule matches
	ClassificationYellow Classification = "YELLOW"
	// ClassificationRed: not available, booked, or nothing matches
	ClassificationRed Classification = "RED"
)

// DoctorAvailability pairs a doctor with their classification
type DoctorAvailability struct {
	Doctor         Doctor
	Classification Classification
}

// BranchCandidate is a branch with at least one doctor passing the
// specialization filter, ranked by the full search.
type BranchCandidate struct {
	Branch     Branch
	DistanceKm float64
	Doctors    []DoctorAvailability
}

// GreenCount returns the number of GREEN doctors at the branch
func (c *BranchCandidate) GreenCount() int {
	n := 0
	for _, d := range c.Doctors {
		if d.Classification == ClassificationGreen {
			n++
		}
	}
	return n
}

// Recommendation is a branch ranked by distance and live available doctors
type Recommendation struct {
	Branch               Branch
	DistanceKm           float64
	AvailableDoctorCount int
}
