package models

// User is a read-only projection of the authenticated user, built from
// claims in the externally-issued access token. Account management lives
// in the identity provider, not here.
type User struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
