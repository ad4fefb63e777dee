package models

import "time"

// AddSeatRequest asks for an extra seat in a full course section.
// Reviewed by the course instructor in a single step.
// The validate tags list every field the form requires at submission;
// drafts bypass them until submit.
type AddSeatRequest struct {
	ID           string        `db:"id" json:"id"`
	Semester     string        `db:"semester" json:"semester" validate:"required"`
	AcademicYear string        `db:"academic_year" json:"academic_year" validate:"required"`
	Date         string        `db:"date" json:"date" validate:"required"`
	Month        string        `db:"month" json:"month" validate:"required"`
	Year         string        `db:"year" json:"year" validate:"required"`
	Lecturer     string        `db:"lecturer" json:"lecturer" validate:"required"`
	StudentName  string        `db:"student_name" json:"student_name" validate:"required"`
	StudentID    string        `db:"student_id" json:"student_id" validate:"required"`
	LevelOfStudy string        `db:"level_of_study" json:"level_of_study" validate:"required"`
	Faculty      string        `db:"faculty" json:"faculty" validate:"required"`
	FieldOfStudy string        `db:"field_of_study" json:"field_of_study" validate:"required"`
	ClassLevel   string        `db:"class_level" json:"class_level" validate:"required"`
	CourseCode   string        `db:"course_code" json:"course_code" validate:"required"`
	CourseTitle  string        `db:"course_title" json:"course_title" validate:"required"`
	Section      string        `db:"section" json:"section" validate:"required"`
	Credits      string        `db:"credits" json:"credits" validate:"required"`
	Day          string        `db:"day" json:"day" validate:"required"`
	Time         string        `db:"time" json:"time" validate:"required"`
	Room         string        `db:"room" json:"room" validate:"required"`
	ContactNo    string        `db:"contact_number" json:"contact_number" validate:"required"`
	Email        string        `db:"email" json:"email" validate:"required"`
	Signature    string        `db:"signature" json:"signature" validate:"required"`
	Status       RequestStatus `db:"status" json:"status"`
	// Latest instructor decision note; set at approve/reject time.
	InstructorComment *string   `db:"instructor_comment" json:"instructor_comment,omitempty"`
	OwnerID           string    `db:"owner_id" json:"owner_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
