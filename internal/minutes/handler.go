package minutes

import (
	"errors"
	"net/http"

	"easyminutes/internal/api"
	"easyminutes/internal/auth"
	"easyminutes/internal/entitlement"
	"easyminutes/internal/logger"
	"easyminutes/internal/summarize"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type GenerateRequest struct {
	Text       string `json:"text"`
	MimeType   string `json:"mime_type"`
	Base64Data string `json:"base64_data"`
}

func (req GenerateRequest) input() summarize.Input {
	return summarize.Input{
		Text:       req.Text,
		MimeType:   req.MimeType,
		Base64Data: req.Base64Data,
	}
}

// denialStatus maps an entitlement denial to a response code: missing or
// exhausted quota invites an upgrade, a plan gap is a plain forbidden.
func denialStatus(reason entitlement.Reason) int {
	if reason == entitlement.ReasonPlanLacksFeature {
		return http.StatusForbidden
	}
	return http.StatusPaymentRequired
}

func respondDenied(c *gin.Context, decision *entitlement.Decision) {
	c.JSON(denialStatus(decision.Reason), api.DenialResponse{
		Error:   "not allowed on current plan",
		Reason:  string(decision.Reason),
		Upgrade: true,
	})
}

// GenerateAnonymous godoc
// @Summary      Generate minutes without an account
// @Description  Free-tier generation capped per browser session.
// @Tags         minutes
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Browser session id"
// @Success      200  {object}  summarize.Minutes
// @Failure      402  {object}  api.DenialResponse
// @Router       /generate [post]
func (h *Handler) GenerateAnonymous(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "X-Session-ID header required"})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	output, ok, err := h.service.GenerateAnonymous(c.Request.Context(), sessionID, req.input())
	if err != nil {
		switch {
		case errors.Is(err, ErrAudioNotAllowed):
			c.JSON(http.StatusForbidden, api.DenialResponse{
				Error:   "audio transcription requires a subscription",
				Reason:  string(entitlement.ReasonPlanLacksFeature),
				Upgrade: true,
			})
		case errors.Is(err, summarize.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "text or file input required"})
		default:
			logger.Errorf("anonymous generation failed: %v", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to generate minutes"})
		}
		return
	}
	if !ok {
		c.JSON(http.StatusPaymentRequired, api.DenialResponse{
			Error:   "free session limit reached",
			Reason:  string(entitlement.ReasonQuotaExceeded),
			Upgrade: true,
		})
		return
	}

	c.JSON(http.StatusOK, output)
}

// Generate godoc
// @Summary      Generate minutes
// @Description  Metered generation for subscribed users; saves when the plan allows it.
// @Tags         minutes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  GenerateResult
// @Failure      402  {object}  api.DenialResponse
// @Failure      403  {object}  api.DenialResponse
// @Router       /minutes/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, decision, err := h.service.Generate(c.Request.Context(), userID, req.input())
	if err != nil {
		if errors.Is(err, summarize.ErrEmptyInput) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "text or file input required"})
			return
		}
		logger.Errorf("generation failed for user %d: %v", userID, err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to generate minutes"})
		return
	}
	if decision != nil {
		respondDenied(c, decision)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	list, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load minutes"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("minuteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid minute id"})
		return
	}

	minute, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrMinuteNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "minute not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load minute"})
		return
	}

	c.JSON(http.StatusOK, minute)
}

func (h *Handler) Update(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("minuteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid minute id"})
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	minute, decision, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		if errors.Is(err, ErrMinuteNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "minute not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update minute"})
		return
	}
	if decision != nil {
		respondDenied(c, decision)
		return
	}

	c.JSON(http.StatusOK, minute)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("minuteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid minute id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrMinuteNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "minute not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete minute"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "deleted"})
}

// Export returns the minute as a downloadable JSON document. Rich formats
// (PDF, DOCX) are rendered client-side.
func (h *Handler) Export(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("minuteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid minute id"})
		return
	}

	minute, decision, err := h.service.Export(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrMinuteNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "minute not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to export minute"})
		return
	}
	if decision != nil {
		respondDenied(c, decision)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="minutes-`+minute.ID.String()+`.json"`)
	c.JSON(http.StatusOK, minute)
}

func (h *Handler) Share(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("minuteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid minute id"})
		return
	}

	token, decision, err := h.service.Share(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrMinuteNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "minute not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to share minute"})
		return
	}
	if decision != nil {
		respondDenied(c, decision)
		return
	}

	c.JSON(http.StatusOK, gin.H{"share_token": token})
}

func (h *Handler) GetShared(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "share token required"})
		return
	}

	minute, err := h.service.GetShared(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrMinuteNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "shared minute not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load shared minute"})
		return
	}

	c.JSON(http.StatusOK, minute)
}
