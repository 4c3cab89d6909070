package domain

import "time"

type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreditPoints int       `json:"credit_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Organisation sponsors events; its members may manage them.
type Organisation struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AdminID     uint   `json:"admin_id"`
}

// Actor is the identity a request runs as, with the organisations it belongs to.
type Actor struct {
	UserID          uint
	OrganisationIDs []uint
}

// MemberOf reports whether the actor belongs to the organisation.
func (a Actor) MemberOf(organisationID uint) bool {
	for _, id := range a.OrganisationIDs {
		if id == organisationID {
			return true
		}
	}
	return false
}
