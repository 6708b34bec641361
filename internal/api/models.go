package api

import (
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
	"github.com/google/uuid"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the token endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by the token endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// RegisterResponse is returned by the registration endpoint.
type RegisterResponse struct {
	User UserResponse `json:"user"`
	AuthResponse
}

// UpdateProfileRequest defines the payload for PATCH /users/me. Omitted
// fields are left unchanged.
type UpdateProfileRequest struct {
	Username       *string `json:"username"        validate:"omitempty,min=3,max=150"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=500"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	Username            string     `json:"username"`
	ProfilePicture      string     `json:"profile_picture,omitempty"`
	IsPro               bool       `json:"is_pro"`
	ProSubscriptionDate *time.Time `json:"pro_subscription_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ProfileResponse adds today's remaining creations, -1 meaning unlimited.
type ProfileResponse struct {
	UserResponse
	RemainingCreations int `json:"remaining_creations"`
}

// StyleResponse is one entry of the style catalog.
type StyleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// CreateDesignRequest defines the payload for POST /designs. OutputFormat
// names the body placement.
type CreateDesignRequest struct {
	Prompt       string `json:"prompt"        validate:"required,max=1500"`
	Style        int64  `json:"style"         validate:"required,gt=0"`
	OutputFormat string `json:"output_format" validate:"max=100"`
	AspectRatio  string `json:"aspect_ratio"  validate:"omitempty,oneof=1:1 3:4 4:3 9:16 16:9"`
	Gender       string `json:"gender"        validate:"omitempty,oneofci=Male Female Unisex"`
}

// UpdateDesignRequest defines the payload for PATCH /designs/{id}.
type UpdateDesignRequest struct {
	IsPublic *bool `json:"is_public" validate:"required"`
}

// VerifyPurchaseRequest defines the payload for the purchase verification endpoint.
type VerifyPurchaseRequest struct {
	Plan  string `json:"plan"  validate:"required,oneof=pro_monthly pro_yearly"`
	Token string `json:"token" validate:"required"`
}

// DesignResponse is the public view of a design.
type DesignResponse struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user"`
	Prompt             string    `json:"prompt"`
	StyleID            int64     `json:"style"`
	StyleName          string    `json:"style_name"`
	StyleDisplayName   string    `json:"style_display_name"`
	Status             string    `json:"status"`
	ImageURL           *string   `json:"image_url"`
	ProcessingDuration *float64  `json:"processing_duration"`
	ModelIdentifier    string    `json:"model_identifier,omitempty"`
	IsPublic           bool      `json:"is_public"`
	IsFavorite         bool      `json:"is_favorite"`
	CreatedAt          time.Time `json:"created_at"`
}

// StatusResponse is a small acknowledgement body.
type StatusResponse struct {
	Status string `json:"status"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                  user.ID,
		Email:               user.Email,
		Username:            user.Username,
		ProfilePicture:      user.ProfilePicture,
		IsPro:               user.IsPro,
		ProSubscriptionDate: user.ProSubscriptionDate,
		CreatedAt:           user.CreatedAt,
	}
}

func profileToResponse(profile *service.Profile) ProfileResponse {
	return ProfileResponse{
		UserResponse:       userToResponse(profile.User),
		RemainingCreations: profile.RemainingCreations,
	}
}

func styleToResponse(style *domain.Style) StyleResponse {
	return StyleResponse{
		ID:          style.ID,
		Name:        style.Name,
		DisplayName: style.DisplayName,
		Description: style.Description,
	}
}

func designToResponse(design *domain.Design) DesignResponse {
	resp := DesignResponse{
		ID:                 design.ID,
		UserID:             design.UserID,
		Prompt:             design.Prompt,
		StyleID:            design.StyleID,
		StyleName:          design.StyleName,
		StyleDisplayName:   design.StyleDisplayName,
		Status:             string(design.Status),
		ProcessingDuration: design.ProcessingDuration,
		ModelIdentifier:    design.ModelIdentifier,
		IsPublic:           design.IsPublic,
		IsFavorite:         design.IsFavorite,
		CreatedAt:          design.CreatedAt,
	}
	if design.ImageReference != "" {
		ref := design.ImageReference
		resp.ImageURL = &ref
	}
	return resp
}

func designsToResponse(designs []*domain.Design) []DesignResponse {
	out := make([]DesignResponse, 0, len(designs))
	for _, d := range designs {
		out = append(out, designToResponse(d))
	}
	return out
}
