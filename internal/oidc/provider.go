package oidc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"techrobotics-site/internal/config"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/models"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const ProviderName = "oidc"

// NewProvider discovers the issuer and builds the authorization code flow config.
func NewProvider(ctx context.Context, cfg *config.OIDCConfig) (*Provider, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &Provider{
		provider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.Scopes,
			RedirectURL:  cfg.RedirectURI,
		},
	}, nil
}

type Provider struct {
	provider     *gooidc.Provider
	oauth2Config *oauth2.Config
}

func (p *Provider) GetProvider() *gooidc.Provider {
	return p.provider
}

func (p *Provider) GetOAuth2Config() *oauth2.Config {
	return p.oauth2Config
}

func (p *Provider) GenerateRandString(bytes int) string {
	if bytes <= 0 {
		bytes = 32
	}

	b := make([]byte, bytes)
	_, _ = rand.Read(b)

	return base64.RawURLEncoding.EncodeToString(b)
}

// codeChallenge derives the S256 PKCE challenge for verifier.
func codeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// StartLogin stores state, nonce and PKCE verifier in the session and returns
// the provider's authorization URL.
func (p *Provider) StartLogin(ctx *middlewares.AppContext) (string, error) {
	state := p.GenerateRandString(32)
	nonce := p.GenerateRandString(32)
	verifier := p.GenerateRandString(56)

	ctx.SessionManager.SetOauthState(ctx, state)
	ctx.SessionManager.SetOauthNonce(ctx, nonce)
	ctx.SessionManager.SetOauthCodeVerifier(ctx, verifier)

	return p.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// HandleCallback validates the provider's redirect and returns the verified
// ID token with the user it describes.
func (p *Provider) HandleCallback(ctx *middlewares.AppContext) (*gooidc.IDToken, *models.User, error) {
	query := ctx.Request.URL.Query()

	if code := query.Get("error"); code != "" {
		return nil, nil, newCallbackError(code, query.Get("error_description"), code)
	}

	storedState := ctx.SessionManager.GetOauthState(ctx)
	ctx.SessionManager.ClearOauthState(ctx)
	if storedState == "" {
		return nil, nil, newCallbackError("invalid_request", "No oauth state found in session", "no oauth state found in session")
	}
	if query.Get("state") != storedState {
		return nil, nil, newCallbackError("invalid_request", "Invalid state parameter", "invalid state parameter")
	}

	code := query.Get("code")
	if code == "" {
		return nil, nil, newCallbackError("invalid_request", "No authorization code received", "no authorization code received")
	}

	verifier := ctx.SessionManager.GetOauthCodeVerifier(ctx)
	ctx.SessionManager.ClearOauthCodeVerifier(ctx)

	token, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, nil, newCallbackError("invalid_grant", "Failed to exchange code for token",
			fmt.Sprintf("failed to exchange code for token: %v", err))
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, nil, newCallbackError("invalid_token", "No id_token found in oauth2 token", "no id_token found in oauth2 token")
	}

	idToken, err := p.provider.Verifier(&gooidc.Config{ClientID: p.oauth2Config.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, newCallbackError("invalid_token", "Failed to verify ID Token",
			fmt.Sprintf("failed to verify ID Token: %v", err))
	}

	nonce := ctx.SessionManager.GetOauthNonce(ctx)
	ctx.SessionManager.ClearOauthNonce(ctx)
	if idToken.Nonce != nonce {
		return nil, nil, newCallbackError("server_error", "Invalid Nonce", "nonce in ID Token is invalid")
	}

	user, err := userFromToken(idToken)
	if err != nil {
		return nil, nil, newCallbackError("server_error", "Failed to extract user from ID Token",
			fmt.Sprintf("failed to extract user from ID Token: %v", err))
	}

	if info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token)); err == nil {
		mergeUserInfo(user, info)
	} else {
		ctx.Logger.Warn("failed to fetch user info, using ID token data only", "error", err)
	}

	return idToken, user, nil
}

type profileClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
}

func (c profileClaims) username() string {
	return firstNonEmpty(c.Name, c.PreferredUsername)
}

// verifiedEmail is the email claim only when the provider vouches for it.
// Accounts are linked by email, so an unverified address is never passed on.
func (c profileClaims) verifiedEmail() string {
	if !c.EmailVerified {
		return ""
	}
	return c.Email
}

func (c profileClaims) user(subject string) *models.User {
	return &models.User{
		ID:       subject,
		Username: firstNonEmpty(c.username(), c.verifiedEmail(), subject),
		Email:    c.verifiedEmail(),
		Role:     models.RoleUser,
		Provider: ProviderName,
	}
}

func userFromToken(idToken *gooidc.IDToken) (*models.User, error) {
	var claims profileClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return claims.user(idToken.Subject), nil
}

func mergeUserInfo(user *models.User, info *gooidc.UserInfo) {
	var claims profileClaims
	if err := info.Claims(&claims); err != nil {
		return
	}
	mergeClaims(user, claims)
}

func mergeClaims(user *models.User, claims profileClaims) {
	user.Username = firstNonEmpty(claims.username(), user.Username)
	user.Email = firstNonEmpty(claims.verifiedEmail(), user.Email)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
