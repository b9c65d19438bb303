package models

import (
	"strings"
	"time"
)

// Role distinguishes member accounts from gym-owner accounts.
type Role string

const (
	RoleMember   Role = "member"
	RoleGymOwner Role = "gym_owner"
)

// User is a member profile as returned by the login endpoint.
type User struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	HeightCm    OptFloat `json:"height_cm"`
	WeightKg    OptFloat `json:"weight_kg"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// DisplayName returns "first last", falling back to the username, then "Athlete".
func (u *User) DisplayName() string {
	if u == nil {
		return "Athlete"
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	if u.Username != "" {
		return u.Username
	}
	return "Athlete"
}

// Gym is one gym managed by an owner.
type Gym struct {
	GymID string `json:"gym_id"`
	Name  string `json:"name"`
}

// GymOwner is the gym-owner profile returned at login.
type GymOwner struct {
	OwnerID  string `json:"owner_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Gyms     []Gym  `json:"gyms"`
}

// AuthSession is what the client persists after a successful login.
type AuthSession struct {
	Role     Role      `json:"role"`
	User     *User     `json:"user,omitempty"`
	Owner    *GymOwner `json:"owner,omitempty"`
	DeviceID string    `json:"device_id,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// UserID returns the member id, or "" for sessions without a member profile.
func (s *AuthSession) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.UserID
}

// LoginResponse is the body of POST /api/login/.
type LoginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Role    Role      `json:"role,omitempty"`
	User    *User     `json:"user,omitempty"`
	Owner   *GymOwner `json:"owner,omitempty"`
}

// HistoryResponse is the body of GET /api/user/{id}/history/{date}/.
type HistoryResponse struct {
	Success bool   `json:"success"`
	Date    string `json:"date"`
	Message string `json:"message,omitempty"`
	User    *struct {
		UserID   string    `json:"user_id"`
		Username string    `json:"username"`
		Sessions []Session `json:"sessions"`
	} `json:"user,omitempty"`
}

// HistoryAllResponse is the body of GET /api/user/{id}/history/.
type HistoryAllResponse struct {
	User
	Sessions []Session `json:"sessions"`
}

// PendingSignup is a member signup awaiting a gym owner's decision.
type PendingSignup struct {
	RequestID    string   `json:"request_id"`
	GymID        string   `json:"gym_id"`
	Username     string   `json:"username,omitempty"`
	Email        string   `json:"email,omitempty"`
	FirstName    string   `json:"first_name,omitempty"`
	LastName     string   `json:"last_name,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	HeightCm     OptFloat `json:"height_cm"`
	WeightKg     OptFloat `json:"weight_kg"`
	FaceVideoURL string   `json:"face_video_url,omitempty"`
	Status       string   `json:"status,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// Decision actions accepted by the signup decision endpoint.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// SignupDecision is the body of the signup decision request.
type SignupDecision struct {
	Action          string `json:"action"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}
