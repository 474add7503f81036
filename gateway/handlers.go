package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/client"

	"restaurant-checkout-system/models"
	"restaurant-checkout-system/payment"
	"restaurant-checkout-system/workflows"
)

const genericPaymentFailure = "Payment failed, please try again."

// checkoutRunner runs one checkout attempt to completion. The production
// implementation starts the checkout workflow and waits for its result.
type checkoutRunner interface {
	Run(ctx context.Context, req models.CheckoutRequest) (models.CheckoutResult, error)
}

type temporalRunner struct {
	client    client.Client
	taskQueue string
}

func (t *temporalRunner) Run(ctx context.Context, req models.CheckoutRequest) (models.CheckoutResult, error) {
	// One checkout per user at a time: the fixed per-user workflow ID
	// makes the server reject a second start while one is running.
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("checkout-%s", req.UserID),
		TaskQueue: t.taskQueue,
	}

	we, err := t.client.ExecuteWorkflow(ctx, options, workflows.CheckoutWorkflow, req)
	if err != nil {
		return models.CheckoutResult{}, errors.Wrap(err, "could not start checkout workflow")
	}

	var result models.CheckoutResult
	if err := we.Get(ctx, &result); err != nil {
		return models.CheckoutResult{}, errors.Wrap(err, "checkout workflow failed")
	}
	return result, nil
}

// busyGuard rejects a second checkout for a user while one is in flight.
type busyGuard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

func newBusyGuard() *busyGuard {
	return &busyGuard{inFlight: make(map[string]bool)}
}

func (g *busyGuard) begin(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[userID] {
		return false
	}
	g.inFlight[userID] = true
	return true
}

func (g *busyGuard) end(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, userID)
}

// notifier delivers the single user-facing notification per checkout
// attempt.
type notifier interface {
	Success(userID, message string)
	Failure(userID, message string)
}

type logNotifier struct {
	log *logrus.Logger
}

func (n *logNotifier) Success(userID, message string) {
	n.log.WithFields(logrus.Fields{"user_id": userID, "kind": "success"}).Info(message)
}

func (n *logNotifier) Failure(userID, message string) {
	n.log.WithFields(logrus.Fields{"user_id": userID, "kind": "failure"}).Warn(message)
}

type checkoutBody struct {
	Items         []models.CartItem    `json:"items"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

type checkoutResponse struct {
	models.CheckoutResult
	Notification string `json:"notification"`
}

// checkoutHandler is the payment-success trigger: it runs the widget for
// the chosen provider and, once the provider confirms, drives the full
// checkout sequence. Exactly one notification is emitted and the busy
// flag is cleared on every exit path.
func (svc *gatewayServer) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	log := svc.log.WithField("user_id", userID)

	var body checkoutBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		svc.renderError(w, log, http.StatusBadRequest, errors.Wrap(err, "could not decode checkout request"))
		return
	}

	if userID == "" {
		svc.notifier.Failure(userID, "You must be signed in to place an order.")
		svc.metrics.observe(body.PaymentMethod, string(models.FailureIdentityMissing), 0)
		svc.renderJSON(w, http.StatusUnauthorized, checkoutResponse{
			CheckoutResult: models.CheckoutResult{Reason: models.FailureIdentityMissing},
			Notification:   "You must be signed in to place an order.",
		})
		return
	}

	if !svc.busy.begin(userID) {
		log.Warn("checkout already in flight, rejecting")
		svc.renderError(w, log, http.StatusConflict, errors.New("a checkout is already in progress for this user"))
		return
	}
	defer svc.busy.end(userID)

	started := time.Now()

	req := models.CheckoutRequest{
		UserID:        userID,
		Items:         body.Items,
		PaymentMethod: body.PaymentMethod,
	}

	provider, err := payment.For(body.PaymentMethod)
	if err != nil {
		svc.renderError(w, log, http.StatusBadRequest, err)
		return
	}

	receipt, err := provider.Initiate(r.Context(), req.GrandTotal())
	if err != nil {
		// Provider failure: no remote call is made, the user gets the
		// generic retry prompt.
		log.WithError(err).Warn("payment provider error")
		svc.notifier.Failure(userID, genericPaymentFailure)
		svc.metrics.observe(body.PaymentMethod, string(models.FailurePaymentProvider), time.Since(started))
		svc.renderJSON(w, http.StatusBadGateway, checkoutResponse{
			CheckoutResult: models.CheckoutResult{Reason: models.FailurePaymentProvider, Message: err.Error()},
			Notification:   genericPaymentFailure,
		})
		return
	}
	req.ProviderReference = receipt.Reference

	result, err := svc.runner.Run(r.Context(), req)
	if err != nil {
		log.WithError(err).Error("checkout did not complete")
		svc.notifier.Failure(userID, genericPaymentFailure)
		svc.metrics.observe(body.PaymentMethod, "error", time.Since(started))
		svc.renderJSON(w, http.StatusBadGateway, checkoutResponse{
			CheckoutResult: models.CheckoutResult{Message: err.Error()},
			Notification:   genericPaymentFailure,
		})
		return
	}

	if !result.Succeeded {
		log.WithFields(logrus.Fields{"reason": result.Reason, "step": result.FailedStep, "order_id": result.OrderID}).
			Warn(result.Message)
		svc.notifier.Failure(userID, result.Message)
		svc.metrics.observe(body.PaymentMethod, string(result.Reason), time.Since(started))
		svc.renderJSON(w, http.StatusBadGateway, checkoutResponse{
			CheckoutResult: result,
			Notification:   result.Message,
		})
		return
	}

	// Finalize: one success notification, then remove exactly the
	// checked-out items from the shared cart in a single atomic replace.
	svc.notifier.Success(userID, result.Message)
	svc.cart.RemoveItems(req.NormalizedItems())
	svc.metrics.observe(body.PaymentMethod, "success", time.Since(started))

	log.WithFields(logrus.Fields{"order_id": result.OrderID, "payment_status": result.PaymentStatus}).Info("checkout completed")
	svc.renderJSON(w, http.StatusOK, checkoutResponse{
		CheckoutResult: result,
		Notification:   result.Message,
	})
}

// paymentErrorHandler is the payment-error trigger: the widget reported
// failure before any remote call, so only local state is reset.
func (svc *gatewayServer) paymentErrorHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	log := svc.log.WithField("user_id", userID)

	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	log.WithField("provider_error", body.Error).Warn("payment widget reported an error")
	svc.busy.end(userID)
	svc.notifier.Failure(userID, genericPaymentFailure)
	svc.metrics.observe("", string(models.FailurePaymentProvider), 0)

	svc.renderJSON(w, http.StatusOK, checkoutResponse{
		CheckoutResult: models.CheckoutResult{Reason: models.FailurePaymentProvider},
		Notification:   genericPaymentFailure,
	})
}

func (svc *gatewayServer) viewCartHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	items, version := svc.cart.Snapshot()
	var mine []models.CartItem
	var total float64
	for _, item := range items {
		if item.UserID == userID {
			mine = append(mine, item)
			total += item.LineTotal()
		}
	}

	svc.renderJSON(w, http.StatusOK, map[string]any{
		"items":       mine,
		"cart_size":   len(mine),
		"grand_total": total,
		"version":     version,
	})
}

func (svc *gatewayServer) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	log := svc.log.WithField("user_id", userID)

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		svc.renderError(w, log, http.StatusBadRequest, errors.Wrap(err, "could not decode cart item"))
		return
	}
	if item.ItemName == "" || item.Quantity <= 0 || item.Price < 0 {
		svc.renderError(w, log, http.StatusBadRequest, errors.New("cart item needs a name, a positive quantity and a non-negative price"))
		return
	}
	item.UserID = userID

	version := svc.cart.Add(item)
	log.WithFields(logrus.Fields{"item": item.ItemName, "quantity": item.Quantity}).Debug("added to cart")

	svc.renderJSON(w, http.StatusOK, map[string]any{"version": version, "cart_size": svc.cart.Len()})
}

func (svc *gatewayServer) renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		svc.log.WithError(err).Error("could not write response")
	}
}

func (svc *gatewayServer) renderError(w http.ResponseWriter, log logrus.FieldLogger, status int, err error) {
	log.WithError(err).Error("request failed")
	svc.renderJSON(w, status, map[string]string{"error": err.Error()})
}
