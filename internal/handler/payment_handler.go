package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/ws"
	"go-kopi-machine/pkg/token"
)

// PaymentHandler serves the QRIS confirmation pages the payer's phone
// lands on. Confirming flips the reference in the cache, which wakes the
// terminal waiting on it; the remote table catches up through the queue.
type PaymentHandler struct {
	cache *cache.Cache
	queue *cache.Queue
	hub   *ws.Hub
	log   zerolog.Logger
}

func NewPaymentHandler(c *cache.Cache, q *cache.Queue, hub *ws.Hub, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{cache: c, queue: q, hub: hub, log: log}
}

// Search shows the loading page that auto-forwards to confirmation.
// GET /pay/search?token=...
func (h *PaymentHandler) Search(c *fiber.Ctx) error {
	signed := c.Query("token")
	if signed == "" {
		return c.Redirect("/pay/failure")
	}
	if _, err := token.Validate(signed); err != nil {
		return c.Redirect("/pay/failure")
	}
	c.Type("html")
	return c.SendString(fmt.Sprintf(loadingPage, signed))
}

// Confirm completes the payment the token refers to.
// GET /pay/confirm?token=...
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	claims, err := token.Validate(c.Query("token"))
	if err != nil {
		return c.Redirect("/pay/failure")
	}

	// Only the first terminal transition commits; a token replayed after
	// completion or expiry lands on the failure page.
	if !h.cache.SetReferenceStatus(claims.RefID, model.RefCompleted) {
		return c.Redirect("/pay/failure")
	}
	h.queue.Enqueue(cache.SetReferenceStatus{RefID: claims.RefID, Status: model.RefCompleted})
	h.hub.Publish(ws.Event{
		Type:    ws.EventPayment,
		Message: "payment confirmed",
		Data:    map[string]interface{}{"ref_id": claims.RefID, "amount": claims.Amount},
	})
	h.log.Info().Str("ref_id", claims.RefID).Int("amount", claims.Amount).Msg("payment confirmed")

	c.Type("html")
	return c.SendString(fmt.Sprintf(successPage, claims.Amount))
}

// Failure is the terminal page for expired, replayed or malformed tokens.
// GET /pay/failure
func (h *PaymentHandler) Failure(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString(failurePage)
}

// NotFound serves the failure page for every unknown path.
func (h *PaymentHandler) NotFound(c *fiber.Ctx) error {
	c.Type("html")
	return c.Status(fiber.StatusNotFound).SendString(failurePage)
}
