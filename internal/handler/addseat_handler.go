package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-request-api/internal/models"
	"github.com/noah-isme/uni-request-api/internal/service"
	"github.com/noah-isme/uni-request-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
	"github.com/noah-isme/uni-request-api/pkg/response"
)

type decisionPayload struct {
	Comment string `json:"comment"`
}

// bindDecision reads the optional decision comment. A missing body is
// allowed; malformed JSON is rejected with a 400.
func bindDecision(c *gin.Context) (decisionPayload, bool) {
	var payload decisionPayload
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return payload, true
	}
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload"))
		return payload, false
	}
	return payload, true
}

// AddSeatHandler wires add-seat request endpoints to the service.
type AddSeatHandler struct {
	service *service.AddSeatService
	metrics *service.MetricsService
}

// NewAddSeatHandler creates a new handler.
func NewAddSeatHandler(svc *service.AddSeatService, metrics *service.MetricsService) *AddSeatHandler {
	return &AddSeatHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Submit add-seat request
// @Description Validate and file a complete add-seat request into the instructor queue
// @Tags AddSeat
// @Accept json
// @Produce json
// @Param payload body models.AddSeatRequest true "Form payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/add-seat [post]
func (h *AddSeatHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.AddSeatRequest
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
// @Summary Save add-seat draft
// @Description Store a possibly incomplete add-seat form
// @Tags AddSeat
// @Accept json
// @Produce json
// @Param payload body models.AddSeatRequest true "Form payload"
// @Success 201 {object} response.Envelope
// @Router /requests/add-seat/draft [post]
func (h *AddSeatHandler) CreateDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.AddSeatRequest
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
// @Summary List add-seat requests
// @Description List the caller's requests, or all with scope=all (admin)
// @Tags AddSeat
// @Produce json
// @Param scope query string false "mine or all"
// @Success 200 {object} response.Envelope
// @Router /requests/add-seat [get]
func (h *AddSeatHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.List(c.Request.Context(), claims, models.ListScope(c.DefaultQuery("scope", "mine")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// ListDrafts godoc
// @Summary List add-seat drafts
// @Tags AddSeat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/add-seat/drafts [get]
func (h *AddSeatHandler) ListDrafts(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.ListDrafts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// DraftCount godoc
// @Summary Count add-seat drafts
// @Tags AddSeat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/add-seat/drafts/count [get]
func (h *AddSeatHandler) DraftCount(c *gin.Context) {
	claims := claimsFromContext(c)
	count, err := h.service.CountDrafts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// Inbox godoc
// @Summary Instructor review queue
// @Description List submitted add-seat requests awaiting instructor review
// @Tags AddSeat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/add-seat/inbox [get]
func (h *AddSeatHandler) Inbox(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.ListPending(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// Get godoc
// @Summary Get add-seat request
// @Tags AddSeat
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/add-seat/{id} [get]
func (h *AddSeatHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	req, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Update godoc
// @Summary Update add-seat draft
// @Tags AddSeat
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.AddSeatRequest true "Form payload"
// @Success 200 {object} response.Envelope
// @Router /requests/add-seat/{id} [put]
func (h *AddSeatHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.AddSeatRequest
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
// @Summary Submit add-seat draft
// @Tags AddSeat
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/add-seat/{id}/submit [post]
func (h *AddSeatHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	out, err := h.service.SubmitDraft(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Delete godoc
// @Summary Delete add-seat draft
// @Tags AddSeat
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Router /requests/add-seat/{id} [delete]
func (h *AddSeatHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.DeleteDraft(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Cancel godoc
// @Summary Cancel add-seat request
// @Description Withdraw an in-flight request; the record is removed
// @Tags AddSeat
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/add-seat/{id}/cancel [post]
func (h *AddSeatHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.Cancel(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Approve godoc
// @Summary Approve add-seat request
// @Tags AddSeat
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body decisionPayload false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/add-seat/{id}/approve [post]
func (h *AddSeatHandler) Approve(c *gin.Context) {
	h.decide(c, workflow.ActionApprove)
}

// Reject godoc
// @Summary Reject add-seat request
// @Tags AddSeat
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body decisionPayload false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/add-seat/{id}/reject [post]
func (h *AddSeatHandler) Reject(c *gin.Context) {
	h.decide(c, workflow.ActionReject)
}

func (h *AddSeatHandler) decide(c *gin.Context, action workflow.Action) {
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
	h.metrics.RecordDecision(models.TypeAddSeat, out.Status)
	response.JSON(c, http.StatusOK, out, nil)
}

// PDF godoc
// @Summary Download approved add-seat request
// @Description Render the fully approved request as a PDF document
// @Tags AddSeat
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /requests/add-seat/{id}/pdf [get]
func (h *AddSeatHandler) PDF(c *gin.Context) {
	claims := claimsFromContext(c)
	payload, err := h.service.RenderPDF(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.PDF(c, "add-seat-"+c.Param("id")+".pdf", payload)
}
