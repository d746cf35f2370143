package domain

import "time"

// Subject groups study materials under a course unit.
type Subject struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Name           string    `json:"name" bson:"name"`
	Code           string    `json:"code" bson:"code"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty"`
	Department     string    `json:"department" bson:"department"`
	Semester       int       `json:"semester" bson:"semester"`
	Credits        int       `json:"credits,omitempty" bson:"credits,omitempty"`
	MaterialsCount int       `json:"materials_count" bson:"materials_count"`
	Tags           []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Active         bool      `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}
