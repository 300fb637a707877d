package provider

import (
	"context"
	"errors"
	"fmt"

	"bachat_backend/internal/model"

	"google.golang.org/api/idtoken"
)

// ErrMissingEmail is returned for assertions that carry no email claim.
var ErrMissingEmail = errors.New("id token has no email claim")

type payloadValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks Google ID tokens against one OAuth client id.
type GoogleVerifier struct {
	clientID  string
	validator payloadValidator
}

// NewGoogleVerifier builds a verifier backed by Google's published signing keys.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v}, nil
}

// Verify validates signature, expiry and audience, then extracts the identity claims.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*model.GoogleIdentity, error) {
	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(payload.Subject, payload.Claims)
}

func identityFromClaims(subject string, claims map[string]any) (*model.GoogleIdentity, error) {
	id := &model.GoogleIdentity{Subject: subject}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Picture, _ = claims["picture"].(string)
	if id.Subject == "" {
		return nil, errors.New("id token has no subject")
	}
	if id.Email == "" {
		return nil, ErrMissingEmail
	}
	return id, nil
}
