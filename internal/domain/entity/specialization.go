package entity

// Specialization is a medical field a doctor practices
type Specialization struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Code string `gorm:"type:varchar(20);uniqueIndex" json:"code,omitempty"`
}

func (Specialization) TableName() string {
	return "specializations"
}

// SpecializationFilter selects doctors by specialization id. Any value <= 0
// means no filter.
type SpecializationFilter int

const AnySpecialization SpecializationFilter = 0

// IsAny reports whether the filter accepts every specialization
func (f SpecializationFilter) IsAny() bool {
	return f <= 0
}

// ID returns the specialization id the filter selects
func (f SpecializationFilter) ID() int {
	return int(f)
}

// Matches reports whether a doctor holding ids satisfies the filter
func (f SpecializationFilter) Matches(ids []int) bool {
	if f.IsAny() {
		return true
	}
	for _, id := range ids {
		if id == int(f) {
			return true
		}
	}
	return false
}
