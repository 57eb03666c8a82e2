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

type accountService interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID, name string, phone *string) (*entity.User, error)
	UpdatePrivacySettings(ctx context.Context, userID string, settings entity.PrivacySettings) (*entity.User, error)
	UpdateNotificationSettings(ctx context.Context, userID string, settings entity.NotificationSettings) (*entity.User, error)
	ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error
	DeleteAccount(ctx context.Context, userID string) error
}

type AccountController struct {
	accountService accountService
	logger         logrus.FieldLogger
}

func NewAccountController(accountService accountService) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         factory.NewModuleLogger("account-controller"),
	}
}

func (c *AccountController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &dto.HealthResponse{Status: "ok"})
}

func (c *AccountController) Me(ctx echo.Context) error {
	user, err := c.accountService.GetProfile(ctx.Request().Context(), auth.UserID(ctx))
	if err != nil {
		return c.handleAccountError(ctx, err, "Get profile failed")
	}

	return ctx.JSON(http.StatusOK, &dto.ProfileEnvelopeResponse{Profile: mapper.UserToProfile(user)})
}

func (c *AccountController) UpdateProfile(ctx echo.Context) error {
	req, err := types.NewUpdateProfileRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.accountService.UpdateProfile(ctx.Request().Context(), auth.UserID(ctx), req.Name, req.Phone)
	if err != nil {
		return c.handleAccountError(ctx, err, "Update profile failed")
	}

	return ctx.JSON(http.StatusOK, &dto.ProfileEnvelopeResponse{Profile: mapper.UserToProfile(user)})
}

func (c *AccountController) UpdatePrivacySettings(ctx echo.Context) error {
	req, err := types.NewUpdatePrivacySettingsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.accountService.UpdatePrivacySettings(ctx.Request().Context(), auth.UserID(ctx), entity.PrivacySettings{
		ProfileVisibility: req.ProfileVisibility,
		ContactVisibility: req.ContactVisibility,
	})
	if err != nil {
		return c.handleAccountError(ctx, err, "Update privacy settings failed")
	}

	return ctx.JSON(http.StatusOK, &dto.ProfileEnvelopeResponse{Profile: mapper.UserToProfile(user)})
}

func (c *AccountController) UpdateNotificationSettings(ctx echo.Context) error {
	req, err := types.NewUpdateNotificationSettingsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.accountService.UpdateNotificationSettings(ctx.Request().Context(), auth.UserID(ctx), entity.NotificationSettings{
		Email: entity.ChannelNotifications(req.Email),
		Push:  entity.ChannelNotifications(req.Push),
	})
	if err != nil {
		return c.handleAccountError(ctx, err, "Update notification settings failed")
	}

	return ctx.JSON(http.StatusOK, &dto.ProfileEnvelopeResponse{Profile: mapper.UserToProfile(user)})
}

func (c *AccountController) ChangePassword(ctx echo.Context) error {
	req, err := types.NewChangePasswordRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	err = c.accountService.ChangePassword(ctx.Request().Context(), auth.UserID(ctx), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch), errors.Is(err, service.ErrInvalidRequest):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return writeError(ctx, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, service.ErrUserNotFound):
			return writeError(ctx, http.StatusNotFound, "user not found")
		default:
			c.logger.WithError(err).Error("Change password failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "Password changed successfully"})
}

func (c *AccountController) DeleteAccount(ctx echo.Context) error {
	if err := c.accountService.DeleteAccount(ctx.Request().Context(), auth.UserID(ctx)); err != nil {
		return c.handleAccountError(ctx, err, "Delete account failed")
	}

	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "Account deleted successfully"})
}

func (c *AccountController) handleAccountError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(ctx, http.StatusNotFound, "user not found")
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &dto.ErrorResponse{Error: message})
}
