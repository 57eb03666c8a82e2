package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/auth"
	"github.com/vibast-solutions/ms-go-account-settings/app/dto"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
	"github.com/vibast-solutions/ms-go-account-settings/app/mapper"
	"github.com/vibast-solutions/ms-go-account-settings/app/service"
	"github.com/vibast-solutions/ms-go-account-settings/app/types"
)

type checkoutService interface {
	CreateOrder(ctx context.Context, userID string, planID uint64, couponCode string) (*service.OrderResult, error)
	VerifyPayment(ctx context.Context, req *service.VerifyPaymentInput) (*entity.User, error)
	Dismiss(ctx context.Context, userID, orderID string) error
}

type upgradeService interface {
	FreeUpgrade(ctx context.Context, userID string, planID uint64, couponCode string) (*entity.User, error)
}

type CheckoutController struct {
	checkoutService checkoutService
	upgradeService  upgradeService
	logger          logrus.FieldLogger
}

func NewCheckoutController(checkoutService checkoutService, upgradeService upgradeService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		upgradeService:  upgradeService,
		logger:          factory.NewModuleLogger("checkout-controller"),
	}
}

func (c *CheckoutController) CreateOrder(ctx echo.Context) error {
	req, err := types.NewCreatePaymentOrderRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.checkoutService.CreateOrder(ctx.Request().Context(), auth.UserID(ctx), req.PlanID, req.CouponCode)
	if err != nil {
		return c.handleCheckoutError(ctx, err, "Create payment order failed")
	}

	return ctx.JSON(http.StatusOK, &dto.CreateOrderResponse{
		SessionID:  result.Session.ID,
		OrderID:    result.OrderID,
		Amount:     result.Amount,
		Currency:   result.Currency,
		PayerName:  result.PayerName,
		PayerEmail: result.PayerEmail,
	})
}

func (c *CheckoutController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.checkoutService.VerifyPayment(ctx.Request().Context(), &service.VerifyPaymentInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return c.handleCheckoutError(ctx, err, "Verify payment failed")
	}

	return ctx.JSON(http.StatusOK, &dto.VerifyPaymentResponse{
		Message: "Payment verified successfully",
		Profile: mapper.UserToProfile(user),
	})
}

func (c *CheckoutController) Dismiss(ctx echo.Context) error {
	req, err := types.NewDismissCheckoutRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.checkoutService.Dismiss(ctx.Request().Context(), auth.UserID(ctx), req.OrderID); err != nil {
		return c.handleCheckoutError(ctx, err, "Dismiss checkout failed")
	}

	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "Checkout dismissed"})
}

func (c *CheckoutController) FreeUpgrade(ctx echo.Context) error {
	req, err := types.NewFreeUpgradeRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.upgradeService.FreeUpgrade(ctx.Request().Context(), auth.UserID(ctx), req.PlanID, req.CouponCode)
	if err != nil {
		return c.handleCheckoutError(ctx, err, "Free upgrade failed")
	}

	return ctx.JSON(http.StatusOK, &dto.FreeUpgradeResponse{
		Success: true,
		Profile: mapper.UserToProfile(user),
	})
}

func (c *CheckoutController) handleCheckoutError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrCouponInvalid),
		errors.Is(err, service.ErrPlanNotBillable),
		errors.Is(err, service.ErrNotFullDiscount):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(ctx, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrPlanNotFound):
		return writeError(ctx, http.StatusNotFound, "plan not found")
	case errors.Is(err, service.ErrCouponNotFound):
		return writeError(ctx, http.StatusNotFound, "coupon not found")
	case errors.Is(err, service.ErrCheckoutSessionNotFound):
		return writeError(ctx, http.StatusNotFound, "checkout session not found")
	case errors.Is(err, service.ErrFullDiscountCoupon):
		return writeError(ctx, http.StatusConflict, "coupon covers the full amount, use the free upgrade flow")
	case errors.Is(err, service.ErrCheckoutSessionClosed):
		return writeError(ctx, http.StatusConflict, "checkout session is already closed")
	case errors.Is(err, service.ErrPaymentVerificationFailed):
		return writeError(ctx, http.StatusBadRequest, "payment verification failed")
	case errors.Is(err, service.ErrPaymentInitFailed):
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusBadGateway, "payment could not be initiated")
	case errors.Is(err, service.ErrPartialSettlement), errors.Is(err, service.ErrPartialUpgrade):
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusBadGateway, "upgrade could not be completed, contact support")
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
