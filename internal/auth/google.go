package auth

import (
	"context"
	"strings"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// GoogleProfile is what a verified Google sign-in token says about the caller.
type GoogleProfile struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// FirebaseVerifier checks ID tokens minted by Firebase Authentication for
// Google sign-in.
type FirebaseVerifier struct {
	client *firebaseauth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (GoogleProfile, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return GoogleProfile{}, err
	}
	return GoogleProfile{
		UID:     strings.TrimSpace(token.UID),
		Email:   claim(token.Claims, "email"),
		Name:    claim(token.Claims, "name"),
		Picture: claim(token.Claims, "picture"),
	}, nil
}

func claim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}
