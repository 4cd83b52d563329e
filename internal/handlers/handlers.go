package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/venom3333/CPK-GrandNode/config"
	"github.com/venom3333/CPK-GrandNode/internal/db"
	"github.com/venom3333/CPK-GrandNode/internal/payture"
	"github.com/venom3333/CPK-GrandNode/internal/reconcile"
	"github.com/venom3333/CPK-GrandNode/models"
)

type Handler struct {
	Database   db.Database
	Config     *config.Config
	Logger     *zap.SugaredLogger
	Reconciler *reconcile.Reconciler
	Payture    *payture.Client
}

// PostProcessPayment is the checkout adapter of the session initiator: it
// creates a hosted payment session for the order and sends the customer
// off-site. This is the only handler that does so.
func (h *Handler) PostProcessPayment(w http.ResponseWriter, r *http.Request) {
	if !h.methodActive(w) {
		return
	}

	orderID := r.URL.Query().Get("orderid")
	order, err := h.Database.GetOrderByGUID(orderID)
	if errors.Is(err, models.ErrOrderNotFound) {
		h.Logger.Infow("order not found", "order_id", orderID)
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("order lookup failed", "order_id", orderID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// {orderid} and {success} are filled in by the gateway on return
	callbackURL := fmt.Sprintf("%sPlugins/PaymentPayture/ReturnUrlHandler?orderid={orderid}&result={success}", h.Config.StoreLocation)

	redirectURL, err := h.Payture.InitSession(r.Context(), order, callbackURL)
	if err != nil {
		h.Logger.Errorw("failed to create payment session", "order_id", order.ID, "error", err)
		http.Error(w, "failed to create payment session", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// ReturnUrlHandler receives the customer coming back from the hosted payment
// page. Whatever happened, the customer ends up on a store page: the completed
// page when the charge is confirmed, the generic home page otherwise.
func (h *Handler) ReturnUrlHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodActive(w) {
		return
	}

	orderID := r.URL.Query().Get("orderid")
	isSuccess, _ := strconv.ParseBool(r.URL.Query().Get("result"))

	result := h.Reconciler.HandleReturn(r.Context(), orderID, isSuccess)
	h.Logger.Infow("return url handled", "order_id", result.OrderID, "outcome", result.Outcome.String())

	if result.Outcome == models.OutcomeConfirmedPaid {
		completed := fmt.Sprintf("%s/%s", strings.TrimRight(h.Config.CheckoutCompletedURL, "/"), result.OrderID)
		http.Redirect(w, r, completed, http.StatusFound)
		return
	}

	http.Redirect(w, r, h.Config.HomeURL, http.StatusFound)
}

// NotificationHandler receives the gateway's server-to-server webhook as an
// url-encoded form. It answers 400 only for input the gateway should never
// send (unknown notification type, unresolvable order) and 500 when the order
// store itself is down; everything else, amount mismatches included, gets a
// 200 so the gateway stops retrying.
func (h *Handler) NotificationHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodActive(w) {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Logger.Infow("failed to parse notification body", "error", err)
		http.Error(w, "malformed notification body", http.StatusBadRequest)
		return
	}

	result := h.Reconciler.HandleNotification(r.Context(), r.PostForm)
	h.Logger.Infow("notification handled", "order_id", result.OrderID, "outcome", result.Outcome.String())

	switch result.Outcome {
	case models.OutcomeMalformedInput, models.OutcomeNotFound:
		http.Error(w, result.Reason, http.StatusBadRequest)
	case models.OutcomeStoreUnavailable:
		// a 5xx keeps the gateway retrying until the store is back
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// PaymentInfo returns the customer-facing description text shown next to the
// payment method during checkout.
func (h *Handler) PaymentInfo(w http.ResponseWriter, r *http.Request) {
	if !h.methodActive(w) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"description_text": h.Config.DescriptionText}); err != nil {
		h.Logger.Errorw("failed to encode payment info", "error", err)
	}
}

func (h *Handler) methodActive(w http.ResponseWriter) bool {
	if h.Config.Enabled {
		return true
	}
	http.Error(w, "Payture module cannot be loaded", http.StatusServiceUnavailable)
	return false
}
