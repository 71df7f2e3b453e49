// Package checkout finalizes an order's payment method against the
// commerce backend and runs the VNPay redirect flow: persist the gateway
// URL, count down, then report the redirect as due. The order itself stays
// PENDING server-side until the payment gateway confirms, which is what
// makes re-invoking checkout after a failure safe.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cellex-webapp/cellex-storefront/pkg/audit"
	"github.com/cellex-webapp/cellex-storefront/pkg/countdown"
	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"github.com/cellex-webapp/cellex-storefront/pkg/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ErrInvalidPaymentMethod is returned before any backend call is made.
var ErrInvalidPaymentMethod = errors.New("unsupported payment method")

// Backend is the slice of the commerce client the orchestrator needs.
type Backend interface {
	Checkout(ctx context.Context, orderID string, method models.PaymentMethod) (*models.CheckoutResult, error)
}

// Result is what the UI gets back from a checkout. RedirectIn is the
// number of countdown seconds before the session should navigate to
// PaymentURL; both are zero for COD.
type Result struct {
	Order      models.Order `json:"order"`
	PaymentURL string       `json:"payment_url,omitempty"`
	RedirectIn int          `json:"redirect_in,omitempty"`
}

// RedirectStatus describes the session's pending redirect, if any. After a
// reload the countdown is gone but the URL survives; AutoRedirect is false
// then, so the UI offers a manual "go to gateway" action instead of
// navigating by surprise.
type RedirectStatus struct {
	PaymentURL   string `json:"payment_url,omitempty"`
	State        string `json:"state"`
	Remaining    int    `json:"remaining,omitempty"`
	AutoRedirect bool   `json:"auto_redirect"`
}

type session struct {
	countdown *countdown.Countdown
	orderID   string
}

// Orchestrator runs checkouts and tracks one redirect countdown per
// session.
type Orchestrator struct {
	backend   Backend
	redirects RedirectStore
	audit     *audit.Recorder
	events    *notify.Publisher
	clock     countdown.Clock
	seconds   int
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewOrchestrator(
	backend Backend,
	redirects RedirectStore,
	recorder *audit.Recorder,
	events *notify.Publisher,
	clock countdown.Clock,
	seconds int,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		backend:   backend,
		redirects: redirects,
		audit:     recorder,
		events:    events,
		clock:     clock,
		seconds:   seconds,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// Checkout submits the payment method. COD returns the finalized order and
// nothing else to do. VNPay persists the gateway URL first, then starts
// the countdown, so a reload between the two never loses the URL.
func (o *Orchestrator) Checkout(ctx context.Context, sessionID, orderID string, method models.PaymentMethod) (*Result, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	res, err := o.backend.Checkout(ctx, orderID, method)
	if err != nil {
		return nil, err
	}

	o.audit.RecordAsync(&audit.Entry{
		SessionID: sessionID,
		Action:    "checkout",
		OrderID:   orderID,
		Data: bson.M{
			"payment_method": string(method),
			"total_amount":   res.TotalAmount.String(),
		},
	})
	o.events.PublishAsync(notify.OrderEvent{
		Type:          notify.EventOrderCheckedOut,
		OrderID:       orderID,
		SessionID:     sessionID,
		PaymentMethod: string(method),
		TotalAmount:   res.TotalAmount.String(),
	})

	if method == models.PaymentCOD {
		return &Result{Order: res.Order}, nil
	}

	if res.PaymentURL == "" {
		return nil, fmt.Errorf("backend returned no payment url for order %s", orderID)
	}

	if err := o.redirects.Save(ctx, sessionID, res.PaymentURL); err != nil {
		// The URL is still in the response, so the caller can redirect;
		// only reload recovery is degraded.
		o.logger.Warn("failed to persist payment redirect",
			zap.String("session_id", sessionID),
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	o.startCountdown(sessionID, orderID)

	return &Result{
		Order:      res.Order,
		PaymentURL: res.PaymentURL,
		RedirectIn: o.seconds,
	}, nil
}

func (o *Orchestrator) startCountdown(sessionID, orderID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.sessions[sessionID]
	if !ok {
		sess = &session{}
		cd := countdown.New(o.clock, func() { o.onRedirectDue(sessionID) })
		sess.countdown = cd
		o.sessions[sessionID] = sess
	}
	sess.orderID = orderID
	sess.countdown.Start(o.seconds)
}

func (o *Orchestrator) onRedirectDue(sessionID string) {
	o.mu.Lock()
	sess := o.sessions[sessionID]
	o.mu.Unlock()

	orderID := ""
	if sess != nil {
		orderID = sess.orderID
	}
	o.logger.Info("payment redirect due",
		zap.String("session_id", sessionID),
		zap.String("order_id", orderID))
}

// RedirectState reports the session's pending redirect for the recovery
// affordance. AutoRedirect is only true while a live countdown is running
// in this process.
func (o *Orchestrator) RedirectState(ctx context.Context, sessionID string) (*RedirectStatus, error) {
	url, err := o.redirects.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoRedirect) {
			return &RedirectStatus{State: countdown.Idle.String()}, nil
		}
		return nil, fmt.Errorf("failed to load pending redirect: %w", err)
	}

	status := &RedirectStatus{
		PaymentURL: url,
		State:      countdown.Idle.String(),
	}

	o.mu.Lock()
	sess := o.sessions[sessionID]
	o.mu.Unlock()

	if sess != nil {
		state := sess.countdown.State()
		status.State = state.String()
		status.Remaining = sess.countdown.Remaining()
		status.AutoRedirect = state == countdown.Counting || state == countdown.Fired
	}

	return status, nil
}

// CancelRedirect stops the countdown and returns the session to idle. The
// persisted URL is kept so the user can still reach the gateway manually.
func (o *Orchestrator) CancelRedirect(sessionID string) bool {
	o.mu.Lock()
	sess := o.sessions[sessionID]
	o.mu.Unlock()

	if sess == nil {
		return false
	}
	cancelled := sess.countdown.Cancel()
	if cancelled {
		o.logger.Info("payment redirect cancelled", zap.String("session_id", sessionID))
	}
	return cancelled
}

// ClearSession tears the session down: the countdown is cancelled and the
// persisted redirect key is removed.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	o.mu.Lock()
	sess := o.sessions[sessionID]
	delete(o.sessions, sessionID)
	o.mu.Unlock()

	if sess != nil {
		sess.countdown.Cancel()
	}
	return o.redirects.Clear(ctx, sessionID)
}
