// Package domain contains the issuing business profile.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DefaultBusinessName is stamped on documents when the business has not
// set up its profile yet.
const DefaultBusinessName = "Your Business"

// Profile is the issuer-side contact and banking information printed on
// documents. Purely descriptive; nothing here is computed.
type Profile struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	BusinessName      string `gorm:"type:text;not null" json:"business_name"`
	OwnerName         string `gorm:"type:text" json:"owner_name"`
	Email             string `gorm:"type:text" json:"email"`
	Phone             string `gorm:"type:text" json:"phone"`
	Address           string `gorm:"type:text" json:"address"`
	BankName          string `gorm:"type:text" json:"bank_name"`
	BankAccountName   string `gorm:"type:text" json:"bank_account_name"`
	BankAccountNumber string `gorm:"type:text" json:"bank_account_number"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "business_profiles" }
