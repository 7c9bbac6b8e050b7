package models

import "time"

// Family is the sharing boundary: all meals, invite codes and preference
// lookups are scoped to one family.
type Family struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	InviteCode          *string    `json:"inviteCode,omitempty"`
	InviteCodeExpiresAt *time.Time `json:"inviteCodeExpiresAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"-"`
}

// HasValidInviteCode reports whether the stored code is present and unexpired.
// An expired code may still be stored; joining must reject it.
func (f *Family) HasValidInviteCode(now time.Time) bool {
	return f.InviteCode != nil && f.InviteCodeExpiresAt != nil && f.InviteCodeExpiresAt.After(now)
}
