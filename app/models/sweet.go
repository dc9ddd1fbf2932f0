package models

import "time"

const (
	DefaultRating      = 4.5
	DefaultDescription = "A delicious handcrafted sweet prepared using premium ingredients."
)

// Sweet is a catalogue item. Quantity is the stock on hand and never goes
// negative.
type Sweet struct {
	ID          string    `gorm:"primaryKey;size:36"      json:"_id"`
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Category    string    `gorm:"size:255;not null;index" json:"category"`
	Price       float64   `gorm:"not null"                json:"price"`
	Quantity    int       `gorm:"not null"                json:"quantity"`
	Image       string    `gorm:"size:1024;not null"      json:"image"`
	Rating      float64   `gorm:"not null"                json:"rating"`
	Description string    `gorm:"type:text"               json:"description"`
	CreatedAt   time.Time `gorm:"index"                   json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
