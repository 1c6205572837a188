package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is the directory record for an account. ID is the auth provider UID.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:128" firestore:"-" bson:"_id"`
	Name         string    `json:"name" firestore:"name" bson:"name"`
	Email        string    `json:"email" gorm:"index" firestore:"email" bson:"email"`
	ProfileImage string    `json:"profile_image" firestore:"profileImage" bson:"profileImage"`
	Role         string    `json:"-" gorm:"size:20;default:'member'" firestore:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the account may run administrative operations
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayProfile is the subset of a user shown to other users
type DisplayProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

// ToDisplay returns the public display fields of the user
func (u *User) ToDisplay() DisplayProfile {
	return DisplayProfile{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

type UpdateProfileRequest struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	ProfileImage string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
