package carrierserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	ordershttpmapper "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/render"
	ordersdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	selapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/application"
	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	selports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	shipports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
	apierrors "github.com/Apurer/go-gin-carrier-checkout/internal/shared/errors"
)

// CheckoutAPI wires the checkout flow: carrier saves, rates, the review
// form, validation and the order lifecycle triggers.
type CheckoutAPI struct {
	selection selports.Service
	shipping  shipports.Service
	orders    ordersports.Service
	commits   ordersports.CommitOrchestrator
	logger    *slog.Logger
}

// NewCheckoutAPI creates a CheckoutAPI. A nil commits orchestrator runs the
// processed trigger directly on the orders service.
func NewCheckoutAPI(selection selports.Service, shipping shipports.Service, orders ordersports.Service, commits ordersports.CommitOrchestrator, logger *slog.Logger) CheckoutAPI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return CheckoutAPI{selection: selection, shipping: shipping, orders: orders, commits: commits, logger: logger}
}

// Get /v1/checkout/token
// Issues the token the save action requires
func (api *CheckoutAPI) IssueToken(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	token, err := api.selection.IssueToken(c.Request.Context(), session)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Post /v1/ajax
// Saves the carrier selection of one shipping instance
func (api *CheckoutAPI) Ajax(c *gin.Context) {
	if c.PostForm("action") != selapp.ActionSaveCarrier {
		c.JSON(http.StatusBadRequest, AjaxResponse{Data: AjaxMessage{Message: "Acción desconocida"}})
		return
	}
	// a malformed id reaches the service as 0 so the token is still checked first
	instance, _ := parseInstanceID(c.PostForm("instance_id"))
	result, err := api.selection.Save(c.Request.Context(), selports.SaveInput{
		Session:    sessionFrom(c),
		Instance:   instance,
		Carrier:    c.PostForm("carrier"),
		CustomText: c.PostForm("custom"),
		Token:      c.PostForm("nonce"),
	})
	switch {
	case errors.Is(err, selapp.ErrUnauthorized):
		c.JSON(http.StatusForbidden, AjaxResponse{Data: AjaxMessage{Message: "Nonce inválido"}})
	case errors.Is(err, selapp.ErrInvalidInstance):
		c.JSON(http.StatusBadRequest, AjaxResponse{Data: AjaxMessage{Message: "Instance ID inválido"}})
	case err != nil:
		c.JSON(http.StatusInternalServerError, AjaxResponse{Data: AjaxMessage{Message: err.Error()}})
	default:
		c.JSON(http.StatusOK, AjaxResponse{Success: true, Data: result})
	}
}

// Get /v1/checkout/rates
// Quotes every configured instance, with the current selection in the label
func (api *CheckoutAPI) ListRates(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sess, err := api.selection.Session(ctx, session)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	rates, err := api.shipping.Quote(ctx, shipdomain.Package{}, sess.Selections)
	if err != nil {
		respondShippingError(c, err)
		return
	}
	instances, err := api.shipping.Instances(ctx)
	if err != nil {
		respondShippingError(c, err)
		return
	}
	byID := make(map[shipdomain.InstanceID]*shipdomain.Instance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}
	chosen := make(map[string]bool, len(sess.ChosenMethods))
	for _, id := range sess.ChosenMethods {
		chosen[id] = true
	}

	out := make([]Rate, 0, len(rates))
	for _, rate := range rates {
		item := Rate{
			ID:         rate.ID,
			MethodID:   rate.MethodID,
			InstanceID: int64(rate.InstanceID),
			Label:      rate.Label,
			Cost:       rate.Cost,
			Chosen:     chosen[rate.ID],
		}
		if inst, ok := byID[rate.InstanceID]; ok && inst.OffersSelector() {
			sel := sess.Selection(inst.ID)
			item.Selector = &CarrierSelector{
				Options:          inst.Options(),
				AllowCustom:      inst.AllowCustom,
				CustomFieldLabel: inst.CustomFieldLabel,
				Carrier:          sel.Carrier,
				CustomText:       sel.CustomText,
				CustomVisible:    sel.IsCustom(),
			}
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

// Post /v1/checkout/shipping-method
// Records the checked shipping rates
func (api *CheckoutAPI) ChooseShippingMethod(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	rateIDs := c.PostFormArray("shipping_method[]")
	if len(rateIDs) == 0 {
		rateIDs = c.PostFormArray("shipping_method")
	}
	if err := api.selection.SetChosenMethods(c.Request.Context(), session, rateIDs); err != nil {
		respondCheckoutError(c, err)
		return
	}
	sess, err := api.selection.Session(c.Request.Context(), session)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChosenMethodsResponse{Chosen: append([]string{}, sess.ChosenMethods...)})
}

// Post /v1/checkout/review
// Order review refresh: writes the posted carrier fields into the session
func (api *CheckoutAPI) UpdateOrderReview(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	submission, err := parseSubmission(c)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	ctx := c.Request.Context()
	if err := api.selection.ApplyFormFallback(ctx, session, submission); err != nil {
		respondCheckoutError(c, err)
		return
	}
	sess, err := api.selection.Session(ctx, session)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	selections := sess.Selections
	if selections == nil {
		selections = map[shipdomain.InstanceID]shipdomain.Selection{}
	}
	c.JSON(http.StatusOK, SelectionsResponse{Selections: selections})
}

// Post /v1/checkout/validate
// Reports the notices that would block the checkout
func (api *CheckoutAPI) ValidateCheckout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	submission, err := parseSubmission(c)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	notices, err := api.orders.Validate(c.Request.Context(), session, submission)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	if notices == nil {
		notices = []ordersdomain.Notice{}
	}
	c.JSON(http.StatusOK, ValidationResponse{Valid: len(notices) == 0, Notices: notices})
}

// Post /v1/checkout/orders
// Validates the checkout, creates the order and runs the processed trigger
func (api *CheckoutAPI) PlaceOrder(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	submission, err := parseSubmission(c)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	ctx := c.Request.Context()
	order, err := api.orders.PlaceOrder(ctx, ordersports.PlaceOrderInput{Session: session, Submission: submission})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	api.commitProcessed(ctx, order.ID, session, submission)

	if reloaded, err := api.orders.GetOrder(ctx, order.ID); err == nil {
		order = reloaded
	}
	body, err := describeOrder(ctx, api.orders, order)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, body)
}

// commitProcessed runs the order processed trigger. A failure never fails
// the checkout; the thank-you trigger commits later.
func (api *CheckoutAPI) commitProcessed(ctx context.Context, orderID int64, session seldomain.SessionID, submission seldomain.FormSubmission) {
	req := ordersports.CommitRequest{
		OrderID:    orderID,
		Trigger:    ordersdomain.TriggerOrderProcessed,
		Session:    session,
		Submission: submission,
	}
	var err error
	if api.commits != nil {
		_, err = api.commits.Commit(ctx, req)
	} else {
		_, err = api.orders.Commit(ctx, req)
	}
	if err != nil {
		api.logger.LogAttrs(ctx, slog.LevelWarn, "order processed carrier commit failed",
			slog.Int64("order.id", orderID),
			slog.String("error", err.Error()))
	}
}

// Get /v1/checkout/orders/:orderId/thank-you
// Runs the last commit trigger against the order's session and returns the order
func (api *CheckoutAPI) ThankYou(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	order, err := api.orders.ThankYou(ctx, id)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	body, err := describeOrder(ctx, api.orders, order)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func describeOrder(ctx context.Context, orders ordersports.Service, order *ordersdomain.Order) (ordershttpmapper.Order, error) {
	descriptions, err := orders.DescribeCarriers(ctx, order)
	if err != nil {
		return ordershttpmapper.Order{}, err
	}
	return ordershttpmapper.WithDescriptions(ordershttpmapper.FromDomainOrder(order), descriptions, render.Summary(descriptions)), nil
}
