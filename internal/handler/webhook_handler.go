package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"album-bot/internal/domain"
	"album-bot/internal/provider"

	"go.uber.org/zap"
)

// DeliveryScheduler is the thread-safe, non-blocking handoff into the
// conversation dispatcher. Implemented by bot.Dispatcher.
type DeliveryScheduler interface {
	ScheduleDelivery(buyerID int64) bool
}

// WebhookHandler receives asynchronous payment callbacks from the gateway.
// It never performs chat-facing I/O itself and never blocks on delivery.
type WebhookHandler struct {
	provider  provider.PaymentProvider
	scheduler DeliveryScheduler
	logger    *zap.Logger
}

func NewWebhookHandler(paymentProvider provider.PaymentProvider, scheduler DeliveryScheduler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		provider:  paymentProvider,
		scheduler: scheduler,
		logger:    logger,
	}
}

// HandlePaymentCallback processes one gateway callback. Internal failures
// are logged and swallowed: the gateway always gets a 200 ack, so it never
// retries into a duplicate-callback storm because of our own errors.
func (h *WebhookHandler) HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("received payment callback",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()))

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read callback payload", zap.Error(err))
		h.sendAck(w)
		return
	}

	cb, err := h.provider.ParseCallback(payload)
	if err != nil {
		h.logger.Error("failed to parse callback payload",
			zap.Error(err),
			zap.Int("payload_size", len(payload)))
		h.sendAck(w)
		return
	}

	if !cb.Success {
		h.logger.Info("ignoring non-success callback",
			zap.String("status", cb.Status),
			zap.String("tx_ref", cb.TxRef))
		h.sendAck(w)
		return
	}

	buyerID, err := domain.DecodeTxRef(cb.TxRef)
	if err != nil {
		h.logger.Error("failed to decode transaction reference",
			zap.String("tx_ref", cb.TxRef),
			zap.Error(err))
		h.sendAck(w)
		return
	}

	if !h.scheduler.ScheduleDelivery(buyerID) {
		h.logger.Error("delivery queue full, delivery dropped",
			zap.Int64("buyer_id", buyerID),
			zap.String("tx_ref", cb.TxRef))
		h.sendAck(w)
		return
	}

	h.logger.Info("delivery scheduled",
		zap.Int64("buyer_id", buyerID),
		zap.String("tx_ref", cb.TxRef))
	h.sendAck(w)
}

// HandleHealth is the liveness probe: always 200, no side effect.
func (h *WebhookHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *WebhookHandler) sendAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "callback received",
	}); err != nil {
		h.logger.Error("failed to encode ack", zap.Error(err))
	}
}
