package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venom3333/CPK-GrandNode/internal/payture"
	"github.com/venom3333/CPK-GrandNode/models"
)

// Notification types the gateway is allowed to deliver to the webhook. Anything
// else is rejected before the order is looked up.
var acceptedNotifications = []string{"MerchantPay", "EnginePaySuccess"}

// OrderStore is the slice of order persistence the reconciler needs.
type OrderStore interface {
	GetOrderByGUID(orderGUID string) (*models.Order, error)
	InsertOrderNote(note models.OrderNote) error
	MarkOrderAsPaid(order *models.Order, transactionID string) (bool, error)
}

// StateQuerier asks the gateway for the authoritative payment state.
type StateQuerier interface {
	GetState(ctx context.Context, orderGUID string) (payture.StateResult, error)
}

// Reconciler drives the confirmation of payment sessions. Both callback
// adapters (browser return and server webhook) funnel into it; it may be
// re-entered concurrently for the same order and performs at most one paid
// transition per order regardless.
type Reconciler struct {
	Orders  OrderStore
	Gateway StateQuerier
	Logger  *zap.SugaredLogger

	locks orderLocks
}

func NewReconciler(orders OrderStore, gateway StateQuerier, logger *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		Orders:  orders,
		Gateway: gateway,
		Logger:  logger,
	}
}

// HandleReturn reconciles a browser redirect callback. The inbound success flag
// is not trusted by itself: it only decides whether the gateway gets polled.
func (r *Reconciler) HandleReturn(ctx context.Context, rawOrderID string, success bool) models.ReconcileResult {
	order, result := r.resolveOrder(rawOrderID)
	if order == nil {
		return result
	}

	if !success {
		r.insertNote(order.ID, "Return url handler received 'NOT SUCCESS'")
		return models.ReconcileResult{
			Outcome: models.OutcomeGatewayRejected,
			OrderID: order.ID,
			Reason:  "not success",
		}
	}

	state, err := r.Gateway.GetState(ctx, order.OrderGUID)
	if err != nil {
		r.Logger.Errorw("failed to get payment state", "order_id", order.ID, "error", err)
		r.insertNote(order.ID, fmt.Sprintf("Error: %v", err))
		return models.ReconcileResult{
			Outcome: models.OutcomeGatewayRejected,
			OrderID: order.ID,
			Reason:  err.Error(),
		}
	}
	if !state.Success {
		r.insertNote(order.ID, fmt.Sprintf("Error: %s", state.ErrCode))
		return models.ReconcileResult{
			Outcome: models.OutcomeGatewayRejected,
			OrderID: order.ID,
			Reason:  state.ErrCode,
		}
	}

	r.insertNote(order.ID, fmt.Sprintf("Success: orderId %s, state %s, transactionId %s", order.ID, state.State, state.TransactionID))

	return r.applyState(order, state)
}

// HandleNotification reconciles a webhook callback. On top of the redirect
// path it filters the notification type and requires the declared amount to
// equal the order total in minor units; a mismatch is recorded and the order
// left untouched, since the gateway may still separately confirm.
func (r *Reconciler) HandleNotification(ctx context.Context, form url.Values) models.ReconcileResult {
	notification := form.Get("Notification")
	if !isAcceptedNotification(notification) {
		r.Logger.Infow("rejected unknown notification type", "notification", notification)
		return models.ReconcileResult{
			Outcome: models.OutcomeMalformedInput,
			Reason:  fmt.Sprintf("unknown notification type %q", notification),
		}
	}

	order, result := r.resolveOrder(form.Get("OrderId"))
	if order == nil {
		return result
	}

	notificationSuccess, _ := strconv.ParseBool(form.Get("Success"))
	amount := form.Get("Amount")
	errCode := ""
	if !notificationSuccess {
		errCode = form.Get("ErrCode")
	}

	state, err := r.Gateway.GetState(ctx, order.OrderGUID)
	if err != nil {
		r.Logger.Errorw("failed to get payment state", "order_id", order.ID, "error", err)
		r.insertNote(order.ID, fmt.Sprintf("Error: %v", err))
		return models.ReconcileResult{
			Outcome: models.OutcomeGatewayRejected,
			OrderID: order.ID,
			Reason:  err.Error(),
		}
	}

	orderAmount := payture.MinorUnits(order.Total)
	if notificationSuccess && state.Success && orderAmount == amount {
		r.insertNote(order.ID, fmt.Sprintf("Success: orderId %s, state %s, transactionId %s", order.ID, state.State, state.TransactionID))
		return r.applyState(order, state)
	}

	errText := state.ErrCode
	outcome := models.OutcomeGatewayRejected
	if orderAmount != amount {
		errText += fmt.Sprintf(" | Order amount %s != Payture amount %s", orderAmount, amount)
		outcome = models.OutcomeValidationMismatch
	}
	if !notificationSuccess {
		errText += fmt.Sprintf(" | Notification error %s", errCode)
	}
	r.insertNote(order.ID, fmt.Sprintf("Error: %s", errText))

	return models.ReconcileResult{
		Outcome: outcome,
		OrderID: order.ID,
		State:   state.State,
		Reason:  errText,
	}
}

// resolveOrder maps a raw correlation id to an order. A nil order means the
// caller should return the accompanying result as-is.
func (r *Reconciler) resolveOrder(rawOrderID string) (*models.Order, models.ReconcileResult) {
	orderGUID, err := uuid.Parse(rawOrderID)
	if err != nil {
		r.Logger.Infow("malformed order guid", "order_id", rawOrderID, "error", err)
		return nil, models.ReconcileResult{
			Outcome: models.OutcomeNotFound,
			Reason:  fmt.Sprintf("malformed order guid %q", rawOrderID),
		}
	}

	order, err := r.Orders.GetOrderByGUID(orderGUID.String())
	if errors.Is(err, models.ErrOrderNotFound) {
		r.Logger.Infow("order not found", "order_guid", orderGUID.String())
		return nil, models.ReconcileResult{
			Outcome: models.OutcomeNotFound,
			Reason:  err.Error(),
		}
	}
	if err != nil {
		// a store failure is not "no such order": the caller must not tell
		// the gateway the correlation id is bad and kill its retries
		r.Logger.Errorw("order lookup failed", "order_guid", orderGUID.String(), "error", err)
		return nil, models.ReconcileResult{
			Outcome: models.OutcomeStoreUnavailable,
			Reason:  err.Error(),
		}
	}

	return order, models.ReconcileResult{}
}

// applyState performs the only state-mutating step of the whole core: if the
// gateway confirms the charge and the order is still eligible, mark it paid.
// The per-order lock keeps two racing callbacks from both passing the guard
// when the store has no conditional update of its own.
func (r *Reconciler) applyState(order *models.Order, state payture.StateResult) models.ReconcileResult {
	if state.State != payture.StateCharged {
		return models.ReconcileResult{
			Outcome:       models.OutcomeConfirmedOther,
			OrderID:       order.ID,
			State:         state.State,
			TransactionID: state.TransactionID,
		}
	}

	unlock := r.locks.lock(order.OrderGUID)
	defer unlock()

	// re-read under the lock: a racing callback may have finished the
	// transition after our lookup
	fresh, err := r.Orders.GetOrderByGUID(order.OrderGUID)
	if err != nil {
		r.Logger.Errorw("failed to re-read order before paid transition", "order_id", order.ID, "error", err)
		fresh = order
	}

	if fresh.CanMarkAsPaid() {
		marked, err := r.Orders.MarkOrderAsPaid(fresh, state.TransactionID)
		if err != nil {
			r.Logger.Errorw("failed to mark order as paid", "order_id", order.ID, "error", err)
		} else if marked {
			r.Logger.Infow("order marked as paid", "order_id", order.ID, "transaction_id", state.TransactionID)
		}
	}

	return models.ReconcileResult{
		Outcome:       models.OutcomeConfirmedPaid,
		OrderID:       order.ID,
		State:         state.State,
		TransactionID: state.TransactionID,
	}
}

func (r *Reconciler) insertNote(orderID string, text string) {
	note := models.OrderNote{
		OrderID:           orderID,
		Note:              text,
		DisplayToCustomer: false,
		CreatedAt:         time.Now().UTC(),
	}
	// a lost note must not undo or block the payment transition
	if err := r.Orders.InsertOrderNote(note); err != nil {
		r.Logger.Errorw("failed to insert order note", "order_id", orderID, "error", err)
	}
}

func isAcceptedNotification(notification string) bool {
	for _, accepted := range acceptedNotifications {
		if notification == accepted {
			return true
		}
	}
	return false
}
