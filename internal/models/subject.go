package models

import "time"

// Subject is a catalog entry referenced by course-related requests.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	SubjectCode string    `db:"subject_code" json:"subject_code" validate:"required"`
	NameEN      string    `db:"name_en" json:"name_en" validate:"required"`
	NameTH      string    `db:"name_th" json:"name_th"`
	Credits     int       `db:"credits" json:"credits" validate:"gte=0"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SubjectFilter captures filtering criteria for listing subjects.
type SubjectFilter struct {
	Search   string
	Page     int
	PageSize int
}
