// Package identity issues and verifies the RS256 access tokens that
// authenticate API requests.
//
// Tokens carry a Principal (user ID, email, role). The server only needs
// the public key to verify; the private key is held by whatever mints
// tokens (the admin-token tool, or an external identity provider signing
// with the same key pair).
package identity
