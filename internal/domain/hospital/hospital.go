package hospital

import (
	"time"
)

const (
	MaxNameLen   = 200
	MaxStreetLen = 200
	MaxCityLen   = 100
	MaxStateLen  = 100
)

type Address struct {
	Street  string `gorm:"column:street;type:varchar(200)" json:"street,omitempty"`
	City    string `gorm:"column:city;type:varchar(100)" json:"city,omitempty"`
	State   string `gorm:"column:state;type:varchar(100)" json:"state,omitempty"`
	Pincode string `gorm:"column:pincode;type:varchar(6)" json:"pincode,omitempty"`
}

type Contact struct {
	Phone string `gorm:"column:phone;type:varchar(10)" json:"phone,omitempty"`
	Email string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
}

// Location is a GeoJSON-style point: [longitude, latitude].
type Location struct {
	Coordinates []float64 `json:"coordinates"`
}

type Hospital struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`

	// ExternalID is the public identifier. Assigned once at creation, never
	// client-supplied, never regenerated.
	ExternalID string `gorm:"column:external_id;type:varchar(36);uniqueIndex;not null" json:"externalId"`

	Name string `gorm:"column:name;type:varchar(200);not null;index" json:"name"`

	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Contact Contact `gorm:"embedded;embeddedPrefix:contact_" json:"contact"`

	Location *Location `gorm:"column:location;serializer:json" json:"location,omitempty"`

	// Deleted marks the record logically absent. Rows with Deleted=true are
	// invisible to get/update/delete.
	Deleted bool `gorm:"column:deleted;default:false;index" json:"-"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

func (h *Hospital) IsActive() bool {
	return !h.Deleted
}

type CreateHospitalCommand struct {
	Name     string
	Address  *Address
	Contact  *Contact
	Location *Location
}

// UpdateHospitalCommand carries the fields of a partial update. Nil means
// "leave unchanged"; a validated update must set at least one.
type UpdateHospitalCommand struct {
	Name     *string
	Address  *Address
	Contact  *Contact
	Location *Location
}

// IsEmpty reports whether no field was supplied at all.
func (c *UpdateHospitalCommand) IsEmpty() bool {
	return c.Name == nil && c.Address == nil && c.Contact == nil && c.Location == nil
}
