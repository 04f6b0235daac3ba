package backend

import (
	"context"
	"fmt"
	"regexp"
)

// SigninUser is the user sent to the signin endpoint
type SigninUser struct {
	Email           string `json:"email"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	NewsletterOptIn bool   `json:"newsletterOptIn"`
}

type signinRequest struct {
	User     SigninUser `json:"user"`
	Redirect *string    `json:"redirect"`
}

type signinResponse struct {
	Redirect string `json:"redirect"`
}

var signinToken = regexp.MustCompile(`/signin/([^?]+)`)

// Signin requests a login link for user. Unknown emails create an account.
// Test accounts get the signin URL, with its one-time token, in the response.
func (c *Client) Signin(ctx context.Context, user SigninUser, redirect string) (string, error) {
	req := signinRequest{User: user}
	if redirect != "" {
		req.Redirect = &redirect
	}

	var resp signinResponse
	if err := c.post(ctx, "/users/signin", req, &resp); err != nil {
		return "", fmt.Errorf("failed to sign in %s: %w", user.Email, err)
	}
	return resp.Redirect, nil
}

// TokenFromRedirect extracts the one-time token of a signin URL
func TokenFromRedirect(redirectURL string) (string, error) {
	m := signinToken.FindStringSubmatch(redirectURL)
	if m == nil {
		return "", fmt.Errorf("no signin token in %q", redirectURL)
	}
	return m[1], nil
}
