package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"github.com/mtoivanen/gdrive-go/internal/tokenfile"
)

// ErrNotLoggedIn is returned when no saved token exists for the client.
var ErrNotLoggedIn = errors.New("drive: not logged in")

// Google OAuth2 endpoints for installed applications.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// oobRedirectURL makes the authorization server display the code for the
// user to paste back, instead of redirecting to a local listener.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// AuthPrompt holds what the caller must show the user to complete the
// authorization-code flow.
type AuthPrompt struct {
	// URL is the authorization page the user must visit.
	URL string
}

// clientSecrets is the installed-application credentials JSON shape.
type clientSecrets struct {
	Installed *clientSecretsEntry `json:"installed"`
	Web       *clientSecretsEntry `json:"web"`
}

type clientSecretsEntry struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// oauthConfig builds an oauth2.Config from a client secrets file and the
// requested scope set.
func oauthConfig(scopes []string, credsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("drive: reading credentials %s: %w", credsPath, err)
	}

	var secrets clientSecrets
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("drive: decoding credentials %s: %w", credsPath, err)
	}

	entry := secrets.Installed
	if entry == nil {
		entry = secrets.Web
	}

	if entry == nil || entry.ClientID == "" {
		return nil, fmt.Errorf("drive: credentials %s missing installed/web client entry", credsPath)
	}

	return &oauth2.Config{
		ClientID:     entry.ClientID,
		ClientSecret: entry.ClientSecret,
		Endpoint:     googleEndpoint,
		RedirectURL:  oobRedirectURL,
		Scopes:       scopes,
	}, nil
}

// Login performs the authorization-code flow:
//  1. Builds the authorization URL for the requested scopes
//  2. Calls display so the caller can show the URL to the user
//  3. Waits for the pasted authorization code via readCode
//  4. Exchanges the code and saves the token to tokenPath
//  5. Returns a TokenSource for use with NewClient
//
// ctx must outlive the returned TokenSource: it is bound to the
// underlying refresh machinery.
func Login(
	ctx context.Context,
	scopes []string,
	credsPath, tokenPath string,
	display func(AuthPrompt),
	readCode func() (string, error),
	logger *slog.Logger,
) (TokenSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := oauthConfig(scopes, credsPath)
	if err != nil {
		return nil, err
	}

	logger.Info("starting authorization code flow", slog.String("token_path", tokenPath))

	display(AuthPrompt{URL: cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)})

	code, err := readCode()
	if err != nil {
		return nil, fmt.Errorf("drive: reading authorization code: %w", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("drive: exchanging authorization code: %w", err)
	}

	if err := tokenfile.Save(tokenPath, tok); err != nil {
		return nil, err
	}

	logger.Info("authorization complete", slog.String("token_path", tokenPath))

	return &oauthTokenSource{src: cfg.TokenSource(ctx, tok)}, nil
}

// TokenSourceFromFile returns a TokenSource backed by a previously saved
// token, refreshing it as needed. Returns ErrNotLoggedIn when no token
// file exists.
func TokenSourceFromFile(
	ctx context.Context,
	scopes []string,
	credsPath, tokenPath string,
	logger *slog.Logger,
) (TokenSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := oauthConfig(scopes, credsPath)
	if err != nil {
		return nil, err
	}

	tok, err := tokenfile.Load(tokenPath)
	if err != nil {
		return nil, err
	}

	if tok == nil {
		return nil, ErrNotLoggedIn
	}

	logger.Debug("using saved token", slog.String("token_path", tokenPath))

	return &oauthTokenSource{src: cfg.TokenSource(ctx, tok)}, nil
}

// Logout removes the saved token.
func Logout(tokenPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := tokenfile.Remove(tokenPath); err != nil {
		return err
	}

	logger.Info("token removed", slog.String("token_path", tokenPath))

	return nil
}

// oauthTokenSource adapts oauth2.TokenSource to the bearer-string
// TokenSource the client consumes.
type oauthTokenSource struct {
	src oauth2.TokenSource
}

func (s *oauthTokenSource) Token() (string, error) {
	tok, err := s.src.Token()
	if err != nil {
		return "", fmt.Errorf("drive: refreshing token: %w", err)
	}

	return tok.AccessToken, nil
}

// StaticTokenSource returns a TokenSource that always yields tok.
// Useful for tests and short-lived scripts.
func StaticTokenSource(tok string) TokenSource {
	return staticTokenSource(tok)
}

type staticTokenSource string

func (s staticTokenSource) Token() (string, error) {
	return string(s), nil
}
