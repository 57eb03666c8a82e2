package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type UpdateProfileRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

func NewUpdateProfileRequestFromContext(ctx echo.Context) (*UpdateProfileRequest, error) {
	var body UpdateProfileRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Phone != nil {
		trimmed := strings.TrimSpace(*body.Phone)
		if trimmed == "" {
			body.Phone = nil
		} else {
			body.Phone = &trimmed
		}
	}
	return &body, nil
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type UpdatePrivacySettingsRequest struct {
	ProfileVisibility string `json:"profile_visibility"`
	ContactVisibility string `json:"contact_visibility"`
}

func NewUpdatePrivacySettingsRequestFromContext(ctx echo.Context) (*UpdatePrivacySettingsRequest, error) {
	var body UpdatePrivacySettingsRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.ProfileVisibility = strings.ToLower(strings.TrimSpace(body.ProfileVisibility))
	body.ContactVisibility = strings.ToLower(strings.TrimSpace(body.ContactVisibility))
	return &body, nil
}

func (r *UpdatePrivacySettingsRequest) Validate() error {
	if r.ProfileVisibility == "" || r.ContactVisibility == "" {
		return errors.New("profile_visibility and contact_visibility are required")
	}
	return nil
}

type ChannelFlags struct {
	Billing   bool `json:"billing"`
	Marketing bool `json:"marketing"`
	Security  bool `json:"security"`
}

type UpdateNotificationSettingsRequest struct {
	Email ChannelFlags `json:"email"`
	Push  ChannelFlags `json:"push"`
}

func NewUpdateNotificationSettingsRequestFromContext(ctx echo.Context) (*UpdateNotificationSettingsRequest, error) {
	var body UpdateNotificationSettingsRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *UpdateNotificationSettingsRequest) Validate() error {
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func NewChangePasswordRequestFromContext(ctx echo.Context) (*ChangePasswordRequest, error) {
	var body ChangePasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return errors.New("current_password is required")
	}
	if r.NewPassword == "" {
		return errors.New("new_password is required")
	}
	if r.NewPassword != r.ConfirmPassword {
		return errors.New("new_password and confirm_password must match")
	}
	return nil
}
