// Package user defines the account model used throughout the application,
// particularly for registration, sign-in and session-token issuance.
package user

// User represents a registered account.
//
// Username and Email are unique across all users. Uniqueness is
// exact-match: no case folding or trimming is applied to either field.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	// It is assigned by the storage on creation and never changes.
	ID string `json:"id"`

	// Username is the unique display name chosen at registration.
	Username string `json:"username"`

	// Email is the unique address used for sign-in.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password supplied at
	// registration. The plaintext is never stored.
	PasswordHash string `json:"password_hash"`
}
