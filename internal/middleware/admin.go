package middleware

import "crypto/subtle"

// AdminSecretHeader is the alternative to the body secret for CMS
// mutations; either may carry the shared secret.
const AdminSecretHeader = "X-Admin-Secret"

// SecretsMatch compares a provided admin secret in constant time. An
// empty configured secret never matches: a server without one refuses
// all admin calls.
func SecretsMatch(provided, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}
