package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/sheets/v4"
)

// DefaultTokenFile is where the auth command stores the OAuth token.
const DefaultTokenFile = "token.json"

// Scopes requested for both the history sheet and the calendar.
var Scopes = []string{sheets.SpreadsheetsScope, calendar.CalendarScope}

// Credentials describes where Google credentials come from. The first
// non-empty source wins: ServiceAccountJSON, CredentialsFile, then
// ClientID/ClientSecret with a token saved by the auth command.
type Credentials struct {
	ServiceAccountJSON string
	CredentialsFile    string
	ClientID           string
	ClientSecret       string
	TokenFile          string
}

// HTTPClient returns an authenticated HTTP client for the Google APIs.
func HTTPClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	if creds.ServiceAccountJSON != "" {
		return clientFromJSON(ctx, []byte(creds.ServiceAccountJSON), creds.tokenFile())
	}
	if creds.CredentialsFile != "" {
		b, err := os.ReadFile(creds.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return clientFromJSON(ctx, b, creds.tokenFile())
	}
	if creds.ClientID != "" && creds.ClientSecret != "" {
		config, err := GetOAuthConfig(creds.ClientID, creds.ClientSecret, "")
		if err != nil {
			return nil, err
		}
		return oauthClient(ctx, config, creds.tokenFile())
	}
	return nil, errors.New("no Google credentials configured: set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_CREDENTIALS_FILE or GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET")
}

func (c Credentials) tokenFile() string {
	if c.TokenFile == "" {
		return DefaultTokenFile
	}
	return c.TokenFile
}

// clientFromJSON accepts either a service account key or an installed-app
// client secret. The latter needs a token from the auth command.
func clientFromJSON(ctx context.Context, data []byte, tokenFile string) (*http.Client, error) {
	jwtConfig, err := google.JWTConfigFromJSON(data, Scopes...)
	if err == nil {
		return jwtConfig.Client(ctx), nil
	}

	config, oauthErr := google.ConfigFromJSON(data, Scopes...)
	if oauthErr != nil {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	return oauthClient(ctx, config, tokenFile)
}

func oauthClient(ctx context.Context, config *oauth2.Config, tokenFile string) (*http.Client, error) {
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token %s: %w. Please run the 'auth' command first", tokenFile, err)
	}
	return config.Client(ctx, token), nil
}

// GetOAuthConfig returns the installed-app OAuth2 config.
// It prioritizes the client ID and secret over a client secret file.
func GetOAuthConfig(clientID, clientSecret, credentialsFile string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		}, nil
	}
	if credentialsFile == "" {
		return nil, errors.New("provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or an OAuth client secret file")
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s not found", credentialsFile)
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb exchanges an authorization code for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
