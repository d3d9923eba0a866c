package identity

import (
	"reflect"
	"testing"
)

func TestFromClaimsSubjectFallbacks(t *testing.T) {
	cases := []struct {
		name    string
		claims  map[string]any
		subject string
	}{
		{"userSub wins", map[string]any{"userSub": "u-1", "principalId": "p-1", "sub": "s-1"}, "u-1"},
		{"principalId next", map[string]any{"principalId": "p-1", "sub": "s-1"}, "p-1"},
		{"sub last", map[string]any{"sub": "s-1"}, "s-1"},
		{"blank skipped", map[string]any{"userSub": "  ", "sub": "s-1"}, "s-1"},
		{"non-string ignored", map[string]any{"userSub": 42, "sub": "s-1"}, "s-1"},
		{"nil claims", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := FromClaims(tc.claims)
			if id.Subject != tc.subject {
				t.Fatalf("expected subject %q got %q", tc.subject, id.Subject)
			}
		})
	}
}

func TestFromClaimsGroupsAndOrganizations(t *testing.T) {
	id := FromClaims(map[string]any{
		"sub":             "u-1",
		"cognito:groups":  "Admin, sales ,Admin",
		"organizationIds": []any{"org-1", " org-2 ", "org-1"},
	})

	if want := []string{"Admin", "sales"}; !reflect.DeepEqual(id.Groups, want) {
		t.Fatalf("expected groups %v got %v", want, id.Groups)
	}
	if want := []string{"org-1", "org-2"}; !reflect.DeepEqual(id.Organizations, want) {
		t.Fatalf("expected organizations %v got %v", want, id.Organizations)
	}
}

func TestFromClaimsOrganizationKeyFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		claims map[string]any
		want   []string
	}{
		{"plural camel", map[string]any{"organizationIds": "org-1,org-2"}, []string{"org-1", "org-2"}},
		{"singular camel", map[string]any{"organizationId": "org-1"}, []string{"org-1"}},
		{"custom plural", map[string]any{"custom:organization_ids": []string{"org-3"}}, []string{"org-3"}},
		{"custom singular", map[string]any{"custom:organization_id": "org-4"}, []string{"org-4"}},
		{"snake plural", map[string]any{"organization_ids": "org-5"}, []string{"org-5"}},
		{"snake singular", map[string]any{"organization_id": "org-6"}, []string{"org-6"}},
		{"earlier key wins", map[string]any{"organizationIds": "org-1", "organization_id": "org-9"}, []string{"org-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := FromClaims(tc.claims)
			if !reflect.DeepEqual(id.Organizations, tc.want) {
				t.Fatalf("expected organizations %v got %v", tc.want, id.Organizations)
			}
		})
	}
}

func TestIsAdminOrManager(t *testing.T) {
	cases := []struct {
		name   string
		groups []string
		want   bool
	}{
		{"admin", []string{"admin"}, true},
		{"manager mixed case", []string{"MANAGER"}, true},
		{"admin mixed case", []string{"Admin"}, true},
		{"regular groups", []string{"sales", "support"}, false},
		{"no groups", nil, false},
		{"privileged among others", []string{"sales", "manager"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := Identity{Subject: "u-1", Groups: tc.groups}
			if got := id.IsAdminOrManager(); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestIsAuthenticated(t *testing.T) {
	if (Identity{}).IsAuthenticated() {
		t.Fatal("expected anonymous identity to be unauthenticated")
	}
	if !(Identity{Subject: "u-1"}).IsAuthenticated() {
		t.Fatal("expected identity with subject to be authenticated")
	}
}

func TestInOrganization(t *testing.T) {
	id := Identity{Subject: "u-1", Organizations: []string{"org-1", "org-2"}}
	if !id.InOrganization("org-2") {
		t.Fatal("expected membership in org-2")
	}
	if id.InOrganization("org-3") {
		t.Fatal("expected no membership in org-3")
	}
	if id.InOrganization("ORG-1") {
		t.Fatal("organization comparison must be exact")
	}
}
