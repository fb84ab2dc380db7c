package webhook

import (
	"io"
	"net/http"

	"easyminutes/internal/logger"
	"easyminutes/internal/metrics"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = int64(65536)

// Handler exposes one endpoint per provider. The route must not run any
// body-parsing middleware: signature verification needs the raw bytes.
type Handler struct {
	reconciler *Reconciler
}

func NewHandler(reconciler *Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// Handle godoc
// @Summary      Payment provider webhook
// @Description  Verifies the provider signature and applies the event to the subscription store.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      401  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /webhooks/{provider} [post]
func (h *Handler) Handle(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			logger.Errorf("webhook %s: failed to read body: %v", provider.Name(), err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		if err := provider.VerifySignature(body, c.Request.Header); err != nil {
			logger.Errorf("webhook %s: signature verification failed: %v", provider.Name(), err)
			metrics.RecordWebhookEvent(provider.Name(), "unverified", "bad_signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
			return
		}

		ev, err := provider.ParseEvent(body)
		if err != nil {
			// A malformed payload will not improve on redelivery.
			logger.Errorf("webhook %s: unparseable event: %v", provider.Name(), err)
			metrics.RecordWebhookEvent(provider.Name(), "unparseable", "ignored")
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		if err := h.reconciler.Apply(c.Request.Context(), ev); err != nil {
			if Acknowledgeable(err) {
				logger.Errorf("webhook %s: event %s not applied: %v", provider.Name(), ev.Type, err)
				metrics.RecordWebhookEvent(provider.Name(), ev.Type, "ignored")
				c.JSON(http.StatusOK, gin.H{"status": "ignored"})
				return
			}

			logger.Errorf("webhook %s: infrastructure failure on %s: %v", provider.Name(), ev.Type, err)
			metrics.RecordWebhookEvent(provider.Name(), ev.Type, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}

		metrics.RecordWebhookEvent(provider.Name(), ev.Type, "applied")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
