// Package owner implements the gym owner's signup approval console.
package owner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/claude/titanfit/internal/models"
)

var (
	// ErrNotOwner means the session does not belong to a gym owner.
	ErrNotOwner = errors.New("owner: session is not a gym owner")
	// ErrReasonRequired means a rejection was attempted without a reason.
	ErrReasonRequired = errors.New("owner: please enter a rejection reason")
)

// Backend is the subset of the API the console needs. api.Client implements it.
type Backend interface {
	PendingSignups(ctx context.Context, ownerID, gymID string) ([]models.PendingSignup, error)
	DecideSignup(ctx context.Context, ownerID, requestID string, d models.SignupDecision) error
}

// Console lists and decides pending member signups for one of the owner's gyms.
type Console struct {
	backend Backend
	owner   models.GymOwner
	log     *slog.Logger

	mu      sync.Mutex
	gymID   string
	pending []models.PendingSignup
}

// NewConsole creates a Console for a gym-owner session. The first gym is selected.
func NewConsole(backend Backend, sess *models.AuthSession, log *slog.Logger) (*Console, error) {
	if sess == nil || sess.Role != models.RoleGymOwner || sess.Owner == nil || sess.Owner.OwnerID == "" {
		return nil, ErrNotOwner
	}
	c := &Console{backend: backend, owner: *sess.Owner, log: log}
	if len(c.owner.Gyms) > 0 {
		c.gymID = c.owner.Gyms[0].GymID
	}
	return c, nil
}

// OwnerName is the owner's display name.
func (c *Console) OwnerName() string {
	if c.owner.FullName != "" {
		return c.owner.FullName
	}
	if c.owner.Email != "" {
		return c.owner.Email
	}
	return "Gym Owner"
}

// Gyms lists the owner's gyms.
func (c *Console) Gyms() []models.Gym {
	return c.owner.Gyms
}

// GymID returns the selected gym, or "" if the owner has none.
func (c *Console) GymID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gymID
}

// SelectGym switches gyms and drops the pending list. Unknown ids are ignored.
func (c *Console) SelectGym(gymID string) bool {
	for _, g := range c.owner.Gyms {
		if g.GymID == gymID {
			c.mu.Lock()
			c.gymID = gymID
			c.pending = nil
			c.mu.Unlock()
			return true
		}
	}
	return false
}

// Pending returns a copy of the loaded requests.
func (c *Console) Pending() []models.PendingSignup {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.PendingSignup, len(c.pending))
	copy(out, c.pending)
	return out
}

// Load fetches the pending requests of the selected gym.
func (c *Console) Load(ctx context.Context) ([]models.PendingSignup, error) {
	gymID := strings.TrimSpace(c.GymID())
	if gymID == "" {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		return []models.PendingSignup{}, nil
	}

	reqs, err := c.backend.PendingSignups(ctx, c.owner.OwnerID, gymID)
	if err != nil {
		return nil, fmt.Errorf("loading pending signups: %w", err)
	}

	c.mu.Lock()
	c.pending = reqs
	c.mu.Unlock()
	c.log.Debug("pending signups loaded", "gym_id", gymID, "count", len(reqs))
	return c.Pending(), nil
}

// Approve admits a pending member.
func (c *Console) Approve(ctx context.Context, requestID string) error {
	return c.decide(ctx, requestID, models.SignupDecision{Action: models.DecisionApprove})
}

// Reject declines a pending member. The reason is required.
func (c *Console) Reject(ctx context.Context, requestID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	return c.decide(ctx, requestID, models.SignupDecision{
		Action:          models.DecisionReject,
		RejectionReason: reason,
	})
}

func (c *Console) decide(ctx context.Context, requestID string, d models.SignupDecision) error {
	if err := c.backend.DecideSignup(ctx, c.owner.OwnerID, requestID, d); err != nil {
		return fmt.Errorf("deciding signup %s: %w", requestID, err)
	}

	c.mu.Lock()
	kept := c.pending[:0:0]
	for _, r := range c.pending {
		if r.RequestID != requestID {
			kept = append(kept, r)
		}
	}
	c.pending = kept
	c.mu.Unlock()

	c.log.Info("signup decided", "request_id", requestID, "action", d.Action)
	return nil
}

// MemberName labels a request: full name, then username, then email.
func MemberName(r models.PendingSignup) string {
	if full := strings.TrimSpace(r.FirstName + " " + r.LastName); full != "" {
		return full
	}
	if r.Username != "" {
		return r.Username
	}
	if r.Email != "" {
		return r.Email
	}
	return "Pending Member"
}

// VideoURL resolves a face video path against the API base. Absolute http(s) URLs are
// returned as-is and an empty path stays empty.
func VideoURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
}
