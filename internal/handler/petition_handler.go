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

// PetitionHandler wires general petition endpoints to the service.
type PetitionHandler struct {
	service *service.PetitionService
	metrics *service.MetricsService
}

// NewPetitionHandler creates a new handler.
func NewPetitionHandler(svc *service.PetitionService, metrics *service.MetricsService) *PetitionHandler {
	return &PetitionHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Submit general petition
// @Description Validate and file a complete petition into the advisor queue
// @Tags Petition
// @Accept json
// @Produce json
// @Param payload body models.GeneralPetition true "Form payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/petition [post]
func (h *PetitionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.GeneralPetition
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
// @Summary Save petition draft
// @Tags Petition
// @Accept json
// @Produce json
// @Param payload body models.GeneralPetition true "Form payload"
// @Success 201 {object} response.Envelope
// @Router /requests/petition/draft [post]
func (h *PetitionHandler) CreateDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.GeneralPetition
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
// @Summary List general petitions
// @Tags Petition
// @Produce json
// @Param scope query string false "mine or all"
// @Success 200 {object} response.Envelope
// @Router /requests/petition [get]
func (h *PetitionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.List(c.Request.Context(), claims, models.ListScope(c.DefaultQuery("scope", "mine")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// ListDrafts godoc
// @Summary List petition drafts
// @Tags Petition
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/petition/drafts [get]
func (h *PetitionHandler) ListDrafts(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.ListDrafts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// DraftCount godoc
// @Summary Count petition drafts
// @Tags Petition
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/petition/drafts/count [get]
func (h *PetitionHandler) DraftCount(c *gin.Context) {
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
// @Description Advisor sees submitted petitions, head sees advisor-approved ones
// @Tags Petition
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/petition/inbox [get]
func (h *PetitionHandler) Inbox(c *gin.Context) {
	claims := claimsFromContext(c)
	reqs, err := h.service.ListPending(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// Get godoc
// @Summary Get general petition
// @Tags Petition
// @Produce json
// @Param id path string true "Petition ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/petition/{id} [get]
func (h *PetitionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	req, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Update godoc
// @Summary Update petition draft
// @Tags Petition
// @Accept json
// @Produce json
// @Param id path string true "Petition ID"
// @Param payload body models.GeneralPetition true "Form payload"
// @Success 200 {object} response.Envelope
// @Router /requests/petition/{id} [put]
func (h *PetitionHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.GeneralPetition
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
// @Summary Submit petition draft
// @Tags Petition
// @Produce json
// @Param id path string true "Petition ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/petition/{id}/submit [post]
func (h *PetitionHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	out, err := h.service.SubmitDraft(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Delete godoc
// @Summary Delete petition draft
// @Tags Petition
// @Produce json
// @Param id path string true "Petition ID"
// @Success 204 {object} response.Envelope
// @Router /requests/petition/{id} [delete]
func (h *PetitionHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.DeleteDraft(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Cancel godoc
// @Summary Cancel general petition
// @Tags Petition
// @Produce json
// @Param id path string true "Petition ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/petition/{id}/cancel [post]
func (h *PetitionHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.Cancel(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Approve godoc
// @Summary Approve general petition
// @Tags Petition
// @Accept json
// @Produce json
// @Param id path string true "Petition ID"
// @Param payload body decisionPayload false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/petition/{id}/approve [post]
func (h *PetitionHandler) Approve(c *gin.Context) {
	h.decide(c, workflow.ActionApprove)
}

// Reject godoc
// @Summary Reject general petition
// @Tags Petition
// @Accept json
// @Produce json
// @Param id path string true "Petition ID"
// @Param payload body decisionPayload false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/petition/{id}/reject [post]
func (h *PetitionHandler) Reject(c *gin.Context) {
	h.decide(c, workflow.ActionReject)
}

func (h *PetitionHandler) decide(c *gin.Context, action workflow.Action) {
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
	h.metrics.RecordDecision(models.TypeGeneralPetition, out.Status)
	response.JSON(c, http.StatusOK, out, nil)
}

// PDF godoc
// @Summary Download approved petition
// @Tags Petition
// @Produce application/pdf
// @Param id path string true "Petition ID"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /requests/petition/{id}/pdf [get]
func (h *PetitionHandler) PDF(c *gin.Context) {
	claims := claimsFromContext(c)
	payload, err := h.service.RenderPDF(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.PDF(c, "petition-"+c.Param("id")+".pdf", payload)
}
