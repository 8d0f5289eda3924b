package manager

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
	"go-kopi-machine/internal/ws"
	"go-kopi-machine/pkg/token"
)

// PaymentManager settles an order total by cash or QRIS. QRIS confirmation
// arrives asynchronously from the web confirmation page, so the manager
// waits on the reference's done channel instead of polling the remote
// table.
type PaymentManager struct {
	cache  *cache.Cache
	queue  *cache.Queue
	prompt *console.Prompter
	remote store.Store
	hub    *ws.Hub
	log    zerolog.Logger

	qrisTimeout    time.Duration
	confirmBaseURL string
}

func NewPaymentManager(
	c *cache.Cache,
	q *cache.Queue,
	prompt *console.Prompter,
	remote store.Store,
	hub *ws.Hub,
	log zerolog.Logger,
	qrisTimeout time.Duration,
	confirmBaseURL string,
) *PaymentManager {
	return &PaymentManager{
		cache:          c,
		queue:          q,
		prompt:         prompt,
		remote:         remote,
		hub:            hub,
		log:            log,
		qrisTimeout:    qrisTimeout,
		confirmBaseURL: confirmBaseURL,
	}
}

// ProcessPayment collects payment for the total. It returns whether the
// payment succeeded and the method label for the sale record; a non-nil
// error is a console failure and the caller must roll the order back.
func (p *PaymentManager) ProcessPayment(ctx context.Context, total int) (bool, string, error) {
	for {
		answer, err := p.prompt.Ask("Pay by 1. Cash or 2. QRIS (x to cancel): ")
		if err != nil {
			return false, "", err
		}
		if strings.EqualFold(answer, cancelKey) {
			p.prompt.Printf("Payment canceled.\n")
			return false, "", nil
		}
		switch answer {
		case "1":
			ok, err := p.processCash(total)
			return ok, model.MethodCash, err
		case "2":
			ok, err := p.processQRIS(ctx, total)
			return ok, model.MethodQRIS, err
		}
		p.prompt.Printf("Please answer 1 for Cash or 2 for QRIS.\n")
	}
}

// processCash accumulates inserted notes until the total is covered, then
// dispenses change. Canceling refunds whatever was inserted so far.
func (p *PaymentManager) processCash(total int) (bool, error) {
	inserted := 0
	for inserted < total {
		answer, err := p.prompt.Ask(fmt.Sprintf("Insert cash, Rp%d remaining (x to cancel): ", total-inserted))
		if err != nil {
			if inserted > 0 {
				p.prompt.Printf("Refunding Rp%d.\n", inserted)
			}
			return false, err
		}
		if strings.EqualFold(answer, cancelKey) {
			if inserted > 0 {
				p.prompt.Printf("Refunding Rp%d.\n", inserted)
			}
			return false, nil
		}
		amount, err := strconv.Atoi(answer)
		if err != nil || amount <= 0 {
			p.prompt.Printf("Please insert a positive amount.\n")
			continue
		}
		inserted += amount
	}
	if change := inserted - total; change > 0 {
		p.prompt.Printf("Your change: Rp%d\n", change)
	}
	p.prompt.Printf("Payment received. Enjoy your coffee!\n")
	return true, nil
}

// processQRIS registers a pending reference, prints the signed confirmation
// link and waits for the confirmation page to complete it. The reference
// row is appended to the remote table immediately so the payment trail
// exists even if the machine dies mid-wait; failure to append is logged
// and does not block the payment, the synchronizer's status push has
// nothing to update but the sale itself still settles locally.
func (p *PaymentManager) processQRIS(ctx context.Context, total int) (bool, error) {
	ref := p.cache.AppendReference(model.PaymentReference{
		RefID:     uuid.NewString(),
		Amount:    total,
		Method:    model.MethodQRIS,
		CreatedAt: time.Now(),
		Status:    model.RefPending,
	})

	values := []string{
		ref.RefID,
		strconv.Itoa(ref.Amount),
		ref.Method,
		ref.CreatedAt.Format(cache.RefTimeFormat),
		string(ref.Status),
	}
	if err := p.remote.AppendRow(ctx, store.TableReferences, values); err != nil {
		p.log.Warn().Err(err).Str("ref_id", ref.RefID).Msg("failed to append payment reference to remote table")
	}

	signed, err := token.Generate(ref.RefID, ref.Amount, p.qrisTimeout)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to sign confirmation token")
		p.prompt.Printf("QRIS is unavailable right now, please pay by cash.\n")
		return false, nil
	}

	p.prompt.Printf("Scan to pay Rp%d within %s:\n", ref.Amount, p.qrisTimeout)
	p.prompt.Printf("%s/pay/search?token=%s\n", p.confirmBaseURL, signed)
	p.prompt.Printf("Waiting for payment confirmation...\n")

	select {
	case <-p.cache.ReferenceDone(ref.RefID):
	case <-time.After(p.qrisTimeout):
		// A confirmation racing the deadline wins: SetReferenceStatus only
		// commits Expired if the reference is still pending.
		if p.cache.SetReferenceStatus(ref.RefID, model.RefExpired) {
			p.queue.Enqueue(cache.SetReferenceStatus{RefID: ref.RefID, Status: model.RefExpired})
		}
	}

	final, _ := p.cache.Reference(ref.RefID)
	if final.Status == model.RefCompleted {
		p.prompt.Printf("Payment confirmed. Enjoy your coffee!\n")
		p.hub.Publish(ws.Event{
			Type:    ws.EventPayment,
			Message: "QRIS payment completed",
			Data:    map[string]interface{}{"ref_id": ref.RefID, "amount": ref.Amount},
		})
		return true, nil
	}
	p.prompt.Printf("Payment expired. Please try again.\n")
	return false, nil
}
