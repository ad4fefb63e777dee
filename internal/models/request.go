package models

// RequestStatus enumerates workflow states shared by the request types.
// Each type's state machine only ever moves along its declared edges.
type RequestStatus string

const (
	StatusDraft RequestStatus = "draft"

	// Single-step (instructor) chain.
	StatusSubmitted          RequestStatus = "submitted"
	StatusInstructorApproved RequestStatus = "instructor_approved"
	StatusInstructorRejected RequestStatus = "instructor_rejected"

	// Two-step (advisor then head) chain.
	StatusPendingAdvisor  RequestStatus = "pending_advisor"
	StatusAdvisorApproved RequestStatus = "advisor_approved"
	StatusAdvisorRejected RequestStatus = "advisor_rejected"
	StatusHeadApproved    RequestStatus = "head_approved"
	StatusHeadRejected    RequestStatus = "head_rejected"
)

// RequestType names the supported document types.
type RequestType string

const (
	TypeAddSeat         RequestType = "add_seat"
	TypeOpenCourse      RequestType = "open_course"
	TypeGeneralPetition RequestType = "general_petition"
)

// ListScope selects whose requests a listing returns.
type ListScope string

const (
	ScopeMine ListScope = "mine"
	ScopeAll  ListScope = "all"
)
