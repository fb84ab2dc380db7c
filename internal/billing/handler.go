package billing

import (
	"errors"
	"net/http"

	"easyminutes/internal/api"
	"easyminutes/internal/auth"
	"easyminutes/internal/logger"
	"easyminutes/internal/plan"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// Checkout godoc
// @Summary      Start a checkout session
// @Tags         billing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body  CheckoutRequest  true  "Plan to purchase"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  api.ErrorResponse
// @Router       /billing/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	url, err := h.service.StartCheckout(c.Request.Context(), userID, plan.Type(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotPurchasable), errors.Is(err, ErrPriceNotConfigured):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrBillingUnconfigured):
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "billing not configured"})
		default:
			logger.Errorf("checkout failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to start checkout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Portal godoc
// @Summary      Open the customer portal
// @Tags         billing
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /billing/portal [post]
func (h *Handler) Portal(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	url, err := h.service.OpenPortal(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoBillingCustomer):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "no billing customer for user"})
		case errors.Is(err, ErrBillingUnconfigured):
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "billing not configured"})
		default:
			logger.Errorf("portal session failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to open portal"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Plans())
}

func (h *Handler) Subscription(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("subscription status failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, status)
}
