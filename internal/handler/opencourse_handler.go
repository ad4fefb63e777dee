package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-request-api/internal/models"
	"github.com/noah-isme/uni-request-api/internal/service"
	"github.com/noah-isme/uni-request-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
	"github.com/noah-isme/uni-request-api/pkg/response"
)

// OpenCourseHandler wires open-course request endpoints to the service.
type OpenCourseHandler struct {
	service *service.OpenCourseService
	metrics *service.MetricsService
}

// NewOpenCourseHandler creates a new handler.
func NewOpenCourseHandler(svc *service.OpenCourseService, metrics *service.MetricsService) *OpenCourseHandler {
	return &OpenCourseHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Submit open-course request
// @Description Validate and file a complete open-course request into the advisor queue
// @Tags OpenCourse
// @Accept json
// @Produce json
// @Param payload body models.OpenCourseRequest true "Form payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/open-course [post]
func (h *OpenCourseHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.OpenCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	out, err := h.service.CreateSubmitted(c.Request.Context(), claims, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, out)
}

// CreateDraft godoc
// @Summary Save open-course draft
// @Tags OpenCourse
// @Accept json
// @Produce json
// @Param payload body models.OpenCourseRequest true "Form payload"
// @Success 201 {object} response.Envelope
// @Router /requests/open-course/draft [post]
func (h *OpenCourseHandler) CreateDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.OpenCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	out, err := h.service.CreateDraft(c.Request.Context(), claims, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, out)
}

// List godoc
// @Summary List open-course requests
// @Tags OpenCourse
// @Produce json
// @Param scope query string false "mine or all"
// @Success 200 {object} response.Envelope
// @Router /requests/open-course [get]
func (h *OpenCourseHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.List(c.Request.Context(), claims, models.ListScope(c.DefaultQuery("scope", "mine")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// ListDrafts godoc
// @Summary List open-course drafts
// @Tags OpenCourse
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/open-course/drafts [get]
func (h *OpenCourseHandler) ListDrafts(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.ListDrafts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// DraftCount godoc
// @Summary Count open-course drafts
// @Tags OpenCourse
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/open-course/drafts/count [get]
func (h *OpenCourseHandler) DraftCount(c *gin.Context) {
	claims := claimsFromContext(c)
	count, err := h.service.CountDrafts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// Inbox godoc
// @Summary Reviewer queue
// @Description Advisor sees submitted requests, head sees advisor-approved ones
// @Tags OpenCourse
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/open-course/inbox [get]
func (h *OpenCourseHandler) Inbox(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.ListPending(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// Get godoc
// @Summary Get open-course request
// @Tags OpenCourse
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/open-course/{id} [get]
func (h *OpenCourseHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	req, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Update godoc
// @Summary Update open-course draft
// @Tags OpenCourse
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.OpenCourseRequest true "Form payload"
// @Success 200 {object} response.Envelope
// @Router /requests/open-course/{id} [put]
func (h *OpenCourseHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.OpenCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	out, err := h.service.UpdateDraft(c.Request.Context(), claims, c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Submit godoc
// @Summary Submit open-course draft
// @Tags OpenCourse
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/open-course/{id}/submit [post]
func (h *OpenCourseHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	out, err := h.service.SubmitDraft(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Delete godoc
// @Summary Delete open-course draft
// @Tags OpenCourse
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Router /requests/open-course/{id} [delete]
func (h *OpenCourseHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.DeleteDraft(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Cancel godoc
// @Summary Cancel open-course request
// @Tags OpenCourse
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/open-course/{id}/cancel [post]
func (h *OpenCourseHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.Cancel(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Approve godoc
// @Summary Approve open-course request
// @Tags OpenCourse
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body decisionPayload false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/open-course/{id}/approve [post]
func (h *OpenCourseHandler) Approve(c *gin.Context) {
	h.decide(c, workflow.ActionApprove)
}

// Reject godoc
// @Summary Reject open-course request
// @Tags OpenCourse
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body decisionPayload false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/open-course/{id}/reject [post]
func (h *OpenCourseHandler) Reject(c *gin.Context) {
	h.decide(c, workflow.ActionReject)
}

func (h *OpenCourseHandler) decide(c *gin.Context, action workflow.Action) {
	claims := claimsFromContext(c)
	payload, ok := bindDecision(c)
	if !ok {
		return
	}

	out, err := h.service.Decide(c.Request.Context(), claims, c.Param("id"), action, payload.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordDecision(models.TypeOpenCourse, out.Status)
	response.JSON(c, http.StatusOK, out, nil)
}

// PDF godoc
// @Summary Download approved open-course request
// @Tags OpenCourse
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /requests/open-course/{id}/pdf [get]
func (h *OpenCourseHandler) PDF(c *gin.Context) {
	claims := claimsFromContext(c)
	payload, err := h.service.RenderPDF(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.PDF(c, "open-course-"+c.Param("id")+".pdf", payload)
}
