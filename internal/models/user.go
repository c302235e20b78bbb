package models

import "time"

// User is a registered account. Identity is the uid; a school owner is
// linked to their tenant through schools.owner_id, not a column here.
type User struct {
	UID            string    // Unique account identifier
	Email          string    // Login email, unique
	FullName       string    // Display name
	PasswordHash   string    // bcrypt hash
	Role           Role      // school_owner or super_admin
	EmailConfirmed bool      // Login is refused until confirmed when confirmation is required
	CreatedAt      time.Time
}
