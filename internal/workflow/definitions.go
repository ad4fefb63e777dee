package workflow

import "github.com/noah-isme/uni-request-api/internal/models"

// AddSeat is the single-step machine reviewed by the course instructor.
//
//	draft -> submitted -> instructor_approved | instructor_rejected
func AddSeat() Definition {
	return Definition{
		Type:      models.TypeAddSeat,
		Draft:     models.StatusDraft,
		Submitted: models.StatusSubmitted,
		Steps: []Step{
			{
				Role:     models.RoleInstructor,
				From:     models.StatusSubmitted,
				Approved: models.StatusInstructorApproved,
				Rejected: models.StatusInstructorRejected,
			},
		},
		Cancellable: []models.RequestStatus{models.StatusSubmitted, models.StatusInstructorApproved},
		Renderable:  []models.RequestStatus{models.StatusInstructorApproved},
	}
}

// OpenCourse is the two-step machine reviewed by advisor then head.
//
//	draft -> pending_advisor -> advisor_approved -> head_approved | head_rejected
//	                         -> advisor_rejected
func OpenCourse() Definition {
	return twoStep(models.TypeOpenCourse)
}

// GeneralPetition shares the open-course shape.
func GeneralPetition() Definition {
	return twoStep(models.TypeGeneralPetition)
}

func twoStep(t models.RequestType) Definition {
	return Definition{
		Type:      t,
		Draft:     models.StatusDraft,
		Submitted: models.StatusPendingAdvisor,
		Steps: []Step{
			{
				Role:     models.RoleAdvisor,
				From:     models.StatusPendingAdvisor,
				Approved: models.StatusAdvisorApproved,
				Rejected: models.StatusAdvisorRejected,
			},
			{
				Role:     models.RoleHead,
				From:     models.StatusAdvisorApproved,
				Approved: models.StatusHeadApproved,
				Rejected: models.StatusHeadRejected,
			},
		},
		Cancellable: []models.RequestStatus{models.StatusPendingAdvisor, models.StatusAdvisorApproved},
		Renderable:  []models.RequestStatus{models.StatusHeadApproved},
	}
}
