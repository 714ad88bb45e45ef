package model

// Resource is a campus support service listing.
type Resource struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Category     string `gorm:"size:50;index:idx_resource_category" json:"category"`
	Contact      string `gorm:"size:255" json:"contact"`
	Location     string `gorm:"size:255" json:"location"`
	Availability string `gorm:"size:255" json:"availability"`
	Link         string `gorm:"size:255" json:"link"`
	Icon         string `gorm:"size:50" json:"icon"`
}
