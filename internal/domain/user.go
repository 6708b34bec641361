package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidUsername  = errors.New("username must be 3-150 characters of letters, digits and @.+-_")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrInvalidPlan      = errors.New("invalid subscription plan")
)

// SubscriptionPlan identifies a purchasable tier.
type SubscriptionPlan string

// Available plans.
const (
	PlanFree       SubscriptionPlan = "free"
	PlanProMonthly SubscriptionPlan = "pro_monthly"
	PlanProYearly  SubscriptionPlan = "pro_yearly"
)

// IsPro reports whether the plan grants unlimited creations.
func (p SubscriptionPlan) IsPro() bool {
	return p == PlanProMonthly || p == PlanProYearly
}

// Valid reports whether p is a known plan.
func (p SubscriptionPlan) Valid() bool {
	return p == PlanFree || p.IsPro()
}

// User represents a registered account. Pro users bypass the daily quota.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	Username            string     `json:"username"`
	Password            string     `json:"-"` // Plaintext, only set during registration/updates
	HashedPassword      string     `json:"-"`
	ProfilePicture      string     `json:"profile_picture,omitempty"`
	IsPro               bool       `json:"is_pro"`
	ProSubscriptionDate *time.Time `json:"pro_subscription_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewUser creates a new free-tier User. The caller is responsible for hashing
// the password before storing the user.
func NewUser(email, username, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.TrimSpace(email),
		Username:  strings.TrimSpace(username),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if !validateUsername(u.Username) {
		return ErrInvalidUsername
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users only carry the hash
		return ErrEmptyPassword
	}

	return nil
}

// ActivateSubscription moves the user onto a paid plan.
func (u *User) ActivateSubscription(plan SubscriptionPlan, now time.Time) error {
	if !plan.IsPro() {
		return ErrInvalidPlan
	}

	subscribedAt := now.UTC()
	u.IsPro = true
	u.ProSubscriptionDate = &subscribedAt
	u.UpdatedAt = subscribedAt
	return nil
}

// validateEmailFormat performs basic validation of email format: a non-empty
// local part, an @, and a domain with an inner dot.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return len(domainPart) >= 3 && dot > 0 && dot < len(domainPart)-1
}

func validateUsername(username string) bool {
	if len(username) < 3 || len(username) > 150 {
		return false
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return false
	}
	return true
}
