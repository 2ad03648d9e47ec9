// Package normalize canonicalises user input before it is validated or stored.
package normalize

import "strings"

// Email trims and lowercases an e-mail address. Profiles are keyed by the result.
func Email(s string) string { return keyword(s) }

// Name trims and collapses inner whitespace runs; case is kept so reports show
// congregation and collaborator names as typed.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role canonicalises a profile role ("admin", "user").
func Role(s string) string { return keyword(s) }

// Status canonicalises a profile status ("pending", "approved", "rejected").
func Status(s string) string { return keyword(s) }

func keyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
