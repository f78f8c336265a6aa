package llm

import (
	"fmt"

	"github.com/spurlabs/spur-chat/internal/domain"
	"google.golang.org/genai"
)

// providerRole translates a stored role into the Gemini role vocabulary.
// The mapping is total over the two known roles; anything else is a
// programming error and fails immediately.
func providerRole(r domain.Role) (genai.Role, error) {
	switch r {
	case domain.RoleUser:
		return genai.RoleUser, nil
	case domain.RoleAssistant:
		return genai.RoleModel, nil
	}
	return "", fmt.Errorf("role %q has no provider mapping", r)
}

// storedRole translates a Gemini role back into the stored vocabulary.
func storedRole(r genai.Role) (domain.Role, error) {
	switch r {
	case genai.RoleUser:
		return domain.RoleUser, nil
	case genai.RoleModel:
		return domain.RoleAssistant, nil
	}
	return "", fmt.Errorf("provider role %q has no stored mapping", r)
}
