package google

import (
	"context"

	"google.golang.org/api/idtoken"

	"healteex/api/internal/service"
)

// Verifier validates Google ID tokens against the configured OAuth client id.
type Verifier struct {
	clientID string
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

func (v *Verifier) Verify(ctx context.Context, token string) (service.GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return service.GoogleIdentity{}, err
	}

	str := func(key string) string {
		s, _ := payload.Claims[key].(string)
		return s
	}
	verified, _ := payload.Claims["email_verified"].(bool)

	return service.GoogleIdentity{
		Email:         str("email"),
		EmailVerified: verified,
		GivenName:     str("given_name"),
		FamilyName:    str("family_name"),
	}, nil
}
