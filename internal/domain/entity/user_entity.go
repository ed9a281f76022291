package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// UserType is the account tier of a user.
type UserType string

const (
	UserTypeRegular UserType = "regular"
	UserTypePro     UserType = "pro"
)

// ParseUserType normalizes a raw string into a UserType.
// The second return value is false for anything outside the fixed set.
func ParseUserType(s string) (UserType, bool) {
	switch UserType(strings.ToLower(strings.TrimSpace(s))) {
	case UserTypeRegular:
		return UserTypeRegular, true
	case UserTypePro:
		return UserTypePro, true
	}
	return "", false
}

func (t UserType) Valid() bool {
	return t == UserTypeRegular || t == UserTypePro
}

// User is the aggregate root for the user domain.
// PasswordHash holds a hex-encoded salted SHA-256 digest, never plaintext.
//
// ID and the timestamps are assigned by the storage layer on insert/update;
// a freshly constructed entity carries zero values for them.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,min=1,max=15"`
	Email        string    `json:"email" validate:"required,email"`
	AvatarPath   string    `json:"avatar_path"`
	PasswordHash string    `json:"-"`
	Type         UserType  `json:"user_type" validate:"required,oneof=regular pro"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserInput is the creation request shape the constructor accepts.
// The password is set separately through SetPassword.
type CreateUserInput struct {
	Name  string
	Email string
	Type  UserType
}

// NewUser builds an in-memory user from a creation request.
// Name and email are trimmed; no password and no id are assigned here.
func NewUser(in CreateUserInput) *User {
	return &User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Type:  in.Type,
	}
}

// SetPassword hashes plain combined with salt and stores the digest,
// replacing any previous hash. The plaintext must be 6-12 characters;
// the stored digest itself has no length rule.
func (u *User) SetPassword(plain, salt string) error {
	if err := helpers.CheckPlainPassword(plain); err != nil {
		return err
	}
	u.PasswordHash = helpers.HashPassword(plain, salt)
	return nil
}

// Password returns the stored hash, empty when no password was ever set.
func (u *User) Password() string {
	return u.PasswordHash
}

// VerifyPassword recomputes the digest from plain and salt and compares it
// against the stored hash. Returns false when no password has been set.
func (u *User) VerifyPassword(plain, salt string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return helpers.CompareHashAndPassword(u.PasswordHash, plain, salt)
}

// IsPro reports whether the user is on the pro tier.
func (u *User) IsPro() bool {
	return u.Type == UserTypePro
}
