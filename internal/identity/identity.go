// Package identity normalizes the caller identity forwarded by the API
// gateway's custom authorizer into a shape the access checks can use.
package identity

import (
	"strings"
)

// privilegedGroups are compared case-insensitively against group claims.
var privilegedGroups = []string{"admin", "manager"}

// Identity is the normalized caller identity for one request. It is
// recomputed per request from the authorizer context and never persisted.
type Identity struct {
	// Subject is the stable user identifier; empty for anonymous callers.
	Subject string
	// Groups keeps the original casing of group claims.
	Groups []string
	// Organizations lists organization memberships.
	Organizations []string
}

// IsAuthenticated reports whether the caller presented a valid subject.
func (id Identity) IsAuthenticated() bool {
	return id.Subject != ""
}

// IsAdminOrManager reports whether the caller belongs to a privileged group.
// Group comparison is case-insensitive; Groups keeps original casing.
func (id Identity) IsAdminOrManager() bool {
	for _, group := range id.Groups {
		for _, privileged := range privilegedGroups {
			if strings.EqualFold(group, privileged) {
				return true
			}
		}
	}
	return false
}

// InOrganization reports membership in the given organization.
func (id Identity) InOrganization(orgID string) bool {
	for _, member := range id.Organizations {
		if member == orgID {
			return true
		}
	}
	return false
}

// FromClaims derives an Identity from an authorizer claims mapping. A nil
// or empty mapping yields a fully anonymous identity. Claims may be a
// single comma-delimited string or a list, and organization membership may
// arrive under singular or plural key names.
func FromClaims(claims map[string]any) Identity {
	if claims == nil {
		return Identity{}
	}

	subject := firstString(claims,
		"userSub",
		"principalId",
		"sub",
	)
	groups := firstList(claims,
		"groups",
		"cognito:groups",
	)
	organizations := firstList(claims,
		"organizationIds",
		"organizationId",
		"custom:organization_ids",
		"custom:organization_id",
		"organization_ids",
		"organization_id",
	)

	return Identity{
		Subject:       subject,
		Groups:        groups,
		Organizations: organizations,
	}
}

func firstString(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := toString(claims[key]); value != "" {
			return value
		}
	}
	return ""
}

func firstList(claims map[string]any, keys ...string) []string {
	for _, key := range keys {
		if values := toList(claims[key]); len(values) != 0 {
			return values
		}
	}
	return nil
}

func toString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// toList accepts either a delimited string or a list of values and returns
// trimmed, de-duplicated entries in first-occurrence order.
func toList(value any) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	default:
		return nil
	}

	var entries []string
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		entries = append(entries, trimmed)
	}
	return entries
}
