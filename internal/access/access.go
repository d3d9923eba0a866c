// Package access implements the grant-matching rules that decide whether
// a caller may download an asset.
package access

import (
	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/models"
)

// Decision is the outcome of evaluating visibility and caller privilege
// before any grants are consulted.
type Decision int

const (
	// Deny rejects the caller outright.
	Deny Decision = iota
	// Allow admits the caller without consulting grants.
	Allow
	// NeedsGrant admits the caller only if a matching grant exists.
	NeedsGrant
)

// Evaluate applies the identity-level rules in order: public assets are
// open to everyone, anonymous callers are denied, admins and managers pass,
// and everyone else requires a grant match.
func Evaluate(asset models.Asset, id identity.Identity) Decision {
	if asset.Visibility == models.VisibilityPublic {
		return Allow
	}
	if !id.IsAuthenticated() {
		return Deny
	}
	if id.IsAdminOrManager() {
		return Allow
	}
	if id.Subject == "" {
		return Deny
	}
	return NeedsGrant
}

// Matches reports whether a single grant admits the identity.
func Matches(grant models.AccessGrant, id identity.Identity) bool {
	switch grant.GrantType {
	case models.GrantAllAuthenticated:
		return id.IsAuthenticated()
	case models.GrantUser:
		return grant.GranteeID != "" && grant.GranteeID == id.Subject
	case models.GrantOrganization:
		return grant.GranteeID != "" && id.InOrganization(grant.GranteeID)
	}
	return false
}

// CanAccess decides access for an asset given its full grant set. The
// repository expresses the same grant conditions as a SQL EXISTS filter so
// that listing endpoints stay a single query; the two must stay in sync.
func CanAccess(asset models.Asset, grants []models.AccessGrant, id identity.Identity) bool {
	switch Evaluate(asset, id) {
	case Allow:
		return true
	case Deny:
		return false
	}
	for _, grant := range grants {
		if Matches(grant, id) {
			return true
		}
	}
	return false
}
