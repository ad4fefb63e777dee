package models

import "time"

// PetitionType enumerates the general petition categories.
type PetitionType string

const (
	PetitionLeave        PetitionType = "request_leave"
	PetitionTranscript   PetitionType = "request_transcript"
	PetitionChangeCourse PetitionType = "request_change_course"
	PetitionOther        PetitionType = "other"
)

// KnownPetitionType reports whether the value is a supported category.
func KnownPetitionType(t PetitionType) bool {
	switch t {
	case PetitionLeave, PetitionTranscript, PetitionChangeCourse, PetitionOther:
		return true
	}
	return false
}

// GeneralPetition is a free-form student petition.
// Reviewed by the student's advisor, then the department head.
// The validate tags list every field the form requires at submission;
// drafts bypass them until submit. Contact numbers must be 10 digits.
type GeneralPetition struct {
	ID             string        `db:"id" json:"id"`
	Email          string        `db:"email" json:"email" validate:"required"`
	Date           string        `db:"date" json:"date" validate:"required"`
	Month          string        `db:"month" json:"month" validate:"required"`
	Year           string        `db:"year" json:"year" validate:"required"`
	StudentID      string        `db:"student_id" json:"student_id" validate:"required"`
	FullName       string        `db:"full_name" json:"full_name" validate:"required"`
	Faculty        string        `db:"faculty" json:"faculty" validate:"required"`
	FieldOfStudy   string        `db:"field_of_study" json:"field_of_study" validate:"required"`
	PetitionType   PetitionType  `db:"petition_type" json:"petition_type" validate:"required,oneof=request_leave request_transcript request_change_course other"`
	Details        string        `db:"details" json:"details" validate:"required"`
	ContactNo      string        `db:"contact_number" json:"contact_number" validate:"required,len=10,numeric"`
	Signature      string        `db:"signature" json:"signature" validate:"required"`
	Status         RequestStatus `db:"status" json:"status"`
	AdvisorComment *string       `db:"advisor_comment" json:"advisor_comment,omitempty"`
	HeadComment    *string       `db:"head_comment" json:"head_comment,omitempty"`
	OwnerID        string        `db:"owner_id" json:"owner_id"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
