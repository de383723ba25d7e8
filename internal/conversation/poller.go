package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/foreveruup/wp-bot/internal/greenapi"
	"github.com/foreveruup/wp-bot/pkg/logging"
)

const (
	defaultIdleDelay  = time.Second
	defaultErrorDelay = 5 * time.Second
	ackTimeout        = 5 * time.Second
)

// notificationGateway is the slice of the gateway client the poller needs.
type notificationGateway interface {
	ReceiveNotification(ctx context.Context) (*greenapi.Notification, error)
	DeleteNotification(ctx context.Context, receiptID int) error
}

// Poller fetches notifications from the gateway one at a time and hands them
// to the processor. Polling is strictly serial: the next fetch starts only
// after the current notification is fully handled and acknowledged.
type Poller struct {
	gateway    notificationGateway
	processor  *Processor
	idleDelay  time.Duration
	errorDelay time.Duration
	logger     *logging.Logger
}

// NewPoller returns a poller pacing empty fetches by idleDelay and failed
// fetches by errorDelay. Non-positive delays fall back to defaults.
func NewPoller(gateway notificationGateway, processor *Processor, idleDelay, errorDelay time.Duration, logger *logging.Logger) *Poller {
	if gateway == nil {
		panic("conversation: gateway cannot be nil")
	}
	if processor == nil {
		panic("conversation: processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if idleDelay <= 0 {
		idleDelay = defaultIdleDelay
	}
	if errorDelay <= 0 {
		errorDelay = defaultErrorDelay
	}

	return &Poller{
		gateway:    gateway,
		processor:  processor,
		idleDelay:  idleDelay,
		errorDelay: errorDelay,
		logger:     logger,
	}
}

// Run polls until ctx is canceled and returns nil on a clean shutdown. A
// notification being handled when cancellation arrives is finished and
// acknowledged before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "idle_delay", p.idleDelay.String(), "error_delay", p.errorDelay.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return nil
		default:
		}

		notification, err := p.gateway.ReceiveNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				p.logger.Info("poller stopped")
				return nil
			}
			p.logger.Error("failed to receive notification", "error", err)
			if !pause(ctx, p.errorDelay) {
				p.logger.Info("poller stopped")
				return nil
			}
			continue
		}

		if notification == nil {
			if !pause(ctx, p.idleDelay) {
				p.logger.Info("poller stopped")
				return nil
			}
			continue
		}

		p.handleNotification(ctx, notification)
	}
}

// handleNotification processes one notification and always acknowledges it
// afterwards, even when processing failed or shutdown has begun. Without the
// acknowledgement the gateway would redeliver the same notification forever.
func (p *Poller) handleNotification(ctx context.Context, n *greenapi.Notification) {
	p.processor.Process(ctx, n)

	deleteCtx, cancel := context.WithTimeout(context.Background(), ackTimeout)
	defer cancel()
	if err := p.gateway.DeleteNotification(deleteCtx, n.ReceiptID); err != nil {
		p.logger.Error("failed to acknowledge notification", "receipt_id", n.ReceiptID, "error", err)
	}
}

// pause sleeps for d unless ctx is canceled first. It reports whether the
// full pause elapsed.
func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
