package llm

import (
	"testing"

	"github.com/spurlabs/spur-chat/internal/domain"
	"google.golang.org/genai"
)

func TestRoleMappingRoundTrip(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAssistant} {
		provider, err := providerRole(role)
		if err != nil {
			t.Fatalf("providerRole(%q): %v", role, err)
		}
		back, err := storedRole(provider)
		if err != nil {
			t.Fatalf("storedRole(%q): %v", provider, err)
		}
		if back != role {
			t.Errorf("round trip %q -> %q -> %q is not the identity", role, provider, back)
		}
	}
}

func TestProviderRoleVocabulary(t *testing.T) {
	got, err := providerRole(domain.RoleAssistant)
	if err != nil {
		t.Fatalf("providerRole: %v", err)
	}
	if got != genai.RoleModel {
		t.Errorf("assistant must map to the provider's model role, got %q", got)
	}
}

func TestProviderRoleRejectsThirdValue(t *testing.T) {
	if _, err := providerRole(domain.Role("system")); err == nil {
		t.Error("expected error for a third role value")
	}
	if _, err := storedRole(genai.Role("system")); err == nil {
		t.Error("expected error for a third provider role value")
	}
}
