package ledger

import "regexp"

// Customer identity format: two uppercase letters followed by eight
// digits, e.g. "US12345678". The ledger treats identity validation as an
// external collaborator; tests and callers may substitute their own.
var customerIDPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{8}$`)

// ValidCustomerID reports whether id matches the external identity format.
func ValidCustomerID(id string) bool {
	return customerIDPattern.MatchString(id)
}
