package entity

import (
	"time"

	"clinic-finder/pkg/geo"
)

// Branch represents a clinic location. Latitude/Longitude are optional;
// branches without both are excluded from distance-based searches.
type Branch struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"type:varchar(150);not null;index" json:"name"`
	Address       string    `gorm:"type:text" json:"address,omitempty"`
	Latitude      *float64  `gorm:"type:double precision" json:"latitude,omitempty"`
	Longitude     *float64  `gorm:"type:double precision" json:"longitude,omitempty"`
	Capacity      int       `gorm:"not null;default:0" json:"capacity"`
	ContactNumber string    `gorm:"type:varchar(30)" json:"contact_number,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Doctors []Doctor `gorm:"many2many:doctor_branch_assignments;" json:"doctors,omitempty"`
}

func (Branch) TableName() string {
	return "branches"
}

// Coordinate returns the branch location and whether it is set
func (b *Branch) Coordinate() (geo.Coordinate, bool) {
	if b.Latitude == nil || b.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Latitude: *b.Latitude, Longitude: *b.Longitude}, true
}
