package models

import "time"

// Sponsor is the party behind a sponsorship order. Orders reference an
// existing sponsor, or one is looked up by email / created on the fly.
type Sponsor struct {
	ID             string    `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Email          string    `bson:"email" json:"email"`
	Phone          string    `bson:"phone" json:"phone"`
	CompanyName    string    `bson:"companyName,omitempty" json:"companyName,omitempty"`
	CompanyWebsite string    `bson:"companyWebsite,omitempty" json:"companyWebsite,omitempty"`
	InstagramID    string    `bson:"instagramId,omitempty" json:"instagramId,omitempty"`
	Note           string    `bson:"note,omitempty" json:"note,omitempty"`
	InternalNote   string    `bson:"internalNote,omitempty" json:"internalNote,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
