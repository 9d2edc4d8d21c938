package models

// TokenEntry is one issued session: the owner's identifier and a random
// token value. At most one entry is live per owner.
type TokenEntry struct {
	OwnerID int64
	Value   int64
}
