package model

import "time"

// Plan is the subscription tier of a user.
type Plan string

// Plan constants.
const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// User is the profile returned by the auth endpoints.
type User struct {
	JoinedAt   time.Time `json:"joinedAt"`
	Avatar     *string   `json:"avatar"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Plan       Plan      `json:"plan"`
	ScansToday int       `json:"scansToday"`
	TotalScans int       `json:"totalScans"`
}

// ProfilePatch is a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil
}
