package model

import "time"

// Occasion is the category of a greeting card
type Occasion string

const (
	OccasionBirthday        Occasion = "birthday"
	OccasionAnniversary     Occasion = "anniversary"
	OccasionCongratulations Occasion = "congratulations"
	OccasionThankYou        Occasion = "thank_you"
	OccasionGetWell         Occasion = "get_well"
	OccasionHoliday         Occasion = "holiday"
)

// DefaultOccasion is applied when a greeting is created without an occasion
const DefaultOccasion = OccasionBirthday

// Occasions lists every accepted occasion in display order
var Occasions = []Occasion{
	OccasionBirthday,
	OccasionAnniversary,
	OccasionCongratulations,
	OccasionThankYou,
	OccasionGetWell,
	OccasionHoliday,
}

// Valid reports whether o is one of the known occasions
func (o Occasion) Valid() bool {
	for _, known := range Occasions {
		if o == known {
			return true
		}
	}
	return false
}

// Greeting represents a single greeting card submission
type Greeting struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	SenderName    string    `json:"senderName" gorm:"type:varchar(255);not null"`
	SenderEmail   string    `json:"senderEmail" gorm:"type:varchar(255);not null"`
	RecipientName string    `json:"recipientName" gorm:"type:varchar(255);not null"`
	Message       string    `json:"message" gorm:"type:text;not null"`
	Occasion      Occasion  `json:"occasion" gorm:"type:varchar(50);not null"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`

	// Position keeps insertion order for stores without a natural ordering
	Position int `json:"-" gorm:"not null;index"`
}

// TableName specifies the table name for Greeting
func (Greeting) TableName() string {
	return "greetings"
}
