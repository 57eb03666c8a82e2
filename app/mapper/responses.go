package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-account-settings/app/dto"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
)

func UserToProfile(item *entity.User) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:    item.ID,
		Name:  item.Name,
		Email: item.Email,
		Phone: item.Phone,
		Privacy: dto.PrivacySettingsResponse{
			ProfileVisibility: item.Privacy.ProfileVisibility,
			ContactVisibility: item.Privacy.ContactVisibility,
		},
		Notifications: dto.NotificationSettingsResponse{
			Email: dto.ChannelNotificationsResponse(item.Notifications.Email),
			Push:  dto.ChannelNotificationsResponse(item.Notifications.Push),
		},
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if item.Subscription != nil {
		resp.Subscription = &dto.SubscriptionResponse{
			PlanID:    item.Subscription.PlanID,
			PlanName:  item.Subscription.PlanName,
			Price:     item.Subscription.Price,
			ExpiresAt: formatTime(item.Subscription.ExpiresAt),
		}
	}

	return resp
}

func PlanToResponse(item *entity.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:            item.ID,
		Code:          item.Code,
		Name:          item.Name,
		Price:         item.Price,
		Currency:      item.Currency,
		DurationLabel: item.DurationLabel,
		Features:      item.Features,
	}
}

func PlansToResponse(items []*entity.Plan) []dto.PlanResponse {
	result := make([]dto.PlanResponse, 0, len(items))
	for _, item := range items {
		result = append(result, PlanToResponse(item))
	}
	return result
}

func CouponToResponse(item *entity.Coupon) dto.CouponResponse {
	return dto.CouponResponse{
		Code:         item.Code,
		DiscountType: item.DiscountType,
		Value:        item.Value,
		MaxDiscount:  item.MaxDiscount,
		ExpiresAt:    item.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func CouponsToResponse(items []*entity.Coupon) []dto.CouponResponse {
	result := make([]dto.CouponResponse, 0, len(items))
	for _, item := range items {
		result = append(result, CouponToResponse(item))
	}
	return result
}

func VerificationToResponse(item *entity.VerificationRecord) dto.VerificationResponse {
	if item == nil {
		return dto.VerificationResponse{Status: entity.VerificationStatusNone}
	}
	return dto.VerificationResponse{
		Status:       item.Status,
		DocumentType: item.DocumentType,
		ID:           item.ID,
		CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatTime(v *time.Time) *string {
	if v == nil {
		return nil
	}
	formatted := v.UTC().Format(time.RFC3339)
	return &formatted
}
