package dto

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type PrivacySettingsResponse struct {
	ProfileVisibility string `json:"profile_visibility"`
	ContactVisibility string `json:"contact_visibility"`
}

type ChannelNotificationsResponse struct {
	Billing   bool `json:"billing"`
	Marketing bool `json:"marketing"`
	Security  bool `json:"security"`
}

type NotificationSettingsResponse struct {
	Email ChannelNotificationsResponse `json:"email"`
	Push  ChannelNotificationsResponse `json:"push"`
}

type SubscriptionResponse struct {
	PlanID    uint64  `json:"plan_id"`
	PlanName  string  `json:"plan_name"`
	Price     float64 `json:"price"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}

type ProfileResponse struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	Email         string                       `json:"email"`
	Phone         *string                      `json:"phone,omitempty"`
	Privacy       PrivacySettingsResponse      `json:"privacy"`
	Notifications NotificationSettingsResponse `json:"notifications"`
	Subscription  *SubscriptionResponse        `json:"subscription,omitempty"`
	CreatedAt     string                       `json:"created_at"`
	UpdatedAt     string                       `json:"updated_at"`
}

type ProfileEnvelopeResponse struct {
	Profile ProfileResponse `json:"profile"`
}

type PlanResponse struct {
	ID            uint64   `json:"id"`
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	DurationLabel string   `json:"duration_label"`
	Features      []string `json:"features"`
}

type ListPlansResponse struct {
	Plans []PlanResponse `json:"plans"`
}

type CouponResponse struct {
	Code         string  `json:"code"`
	DiscountType string  `json:"discount_type"`
	Value        float64 `json:"value"`
	MaxDiscount  float64 `json:"max_discount,omitempty"`
	ExpiresAt    string  `json:"expires_at"`
}

type ListCouponsResponse struct {
	Coupons []CouponResponse `json:"coupons"`
}

type ApplyCouponResponse struct {
	Valid          bool    `json:"valid"`
	CouponCode     string  `json:"coupon_code"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	IsFullDiscount bool    `json:"is_full_discount"`
}

type CreateOrderResponse struct {
	SessionID  uint64  `json:"session_id"`
	OrderID    string  `json:"order_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	PayerName  string  `json:"payer_name"`
	PayerEmail string  `json:"payer_email"`
}

type VerifyPaymentResponse struct {
	Message string          `json:"message"`
	Profile ProfileResponse `json:"profile"`
}

type FreeUpgradeResponse struct {
	Success bool            `json:"success"`
	Profile ProfileResponse `json:"profile"`
}

type VerificationResponse struct {
	Status       string `json:"status"`
	DocumentType string `json:"document_type,omitempty"`
	ID           uint64 `json:"id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}
