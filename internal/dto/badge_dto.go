package dto

// BadgeAwardRequest grants a catalog badge to a user.
type BadgeAwardRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	BadgeID string `json:"badge_id" validate:"required"`
}
