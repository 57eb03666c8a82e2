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

type couponService interface {
	ListForPlan(ctx context.Context, planID uint64) ([]*entity.Coupon, error)
	Apply(ctx context.Context, code string, planID uint64) (*service.AppliedDiscount, error)
	Redeem(ctx context.Context, userID, code, idempotencyKey string) error
}

type planLister interface {
	List(ctx context.Context) ([]*entity.Plan, error)
}

type BillingController struct {
	planRepo      planLister
	couponService couponService
	logger        logrus.FieldLogger
}

func NewBillingController(planRepo planLister, couponService couponService) *BillingController {
	return &BillingController{
		planRepo:      planRepo,
		couponService: couponService,
		logger:        factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) ListPlans(ctx echo.Context) error {
	plans, err := c.planRepo.List(ctx.Request().Context())
	if err != nil {
		c.logger.WithError(err).Error("List plans failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &dto.ListPlansResponse{Plans: mapper.PlansToResponse(plans)})
}

func (c *BillingController) ListCoupons(ctx echo.Context) error {
	req, err := types.NewListCouponsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	coupons, err := c.couponService.ListForPlan(ctx.Request().Context(), req.PlanID)
	if err != nil {
		return c.handleCouponError(ctx, err, "List coupons failed")
	}

	return ctx.JSON(http.StatusOK, &dto.ListCouponsResponse{Coupons: mapper.CouponsToResponse(coupons)})
}

func (c *BillingController) ApplyCoupon(ctx echo.Context) error {
	req, err := types.NewApplyCouponRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	applied, err := c.couponService.Apply(ctx.Request().Context(), req.CouponCode, req.PlanID)
	if err != nil {
		return c.handleCouponError(ctx, err, "Apply coupon failed")
	}

	return ctx.JSON(http.StatusOK, &dto.ApplyCouponResponse{
		Valid:          true,
		CouponCode:     applied.CouponCode,
		DiscountAmount: applied.DiscountAmount,
		FinalAmount:    applied.FinalAmount,
		IsFullDiscount: applied.FullDiscount,
	})
}

func (c *BillingController) RedeemCoupon(ctx echo.Context) error {
	req, err := types.NewRedeemCouponRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	err = c.couponService.Redeem(ctx.Request().Context(), auth.UserID(ctx), req.CouponCode, req.IdempotencyKey)
	if err != nil {
		return c.handleCouponError(ctx, err, "Redeem coupon failed")
	}

	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "Coupon redeemed successfully"})
}

func (c *BillingController) handleCouponError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrCouponInvalid):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanNotFound):
		return writeError(ctx, http.StatusNotFound, "plan not found")
	case errors.Is(err, service.ErrCouponNotFound):
		return writeError(ctx, http.StatusNotFound, "coupon not found")
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
