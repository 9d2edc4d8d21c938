// Package models defines server-side data models persisted by repositories.
package models

// User is a registered account. Email is stored lower-cased and is unique
// across all accounts. Password is kept exactly as supplied at registration.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// SameUser reports whether u and other refer to the same account.
// Only the identifier is compared.
func (u *User) SameUser(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.ID == other.ID
}

// Equal reports whether u and other hold identical field values.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return *u == *other
}
