package dto

// ProfileUpdateRequest changes editable profile fields. Nil fields are left untouched.
type ProfileUpdateRequest struct {
	Fullname         *string `json:"fullname,omitempty" validate:"omitempty,min=2,max=255"`
	Bio              *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	AvatarURL        *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=512"`
	IdentityImageURL *string `json:"identity_image_url,omitempty" validate:"omitempty,url,max=512"`
}
