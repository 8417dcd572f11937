package sheets

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scope grants read/write access to spreadsheets.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

// ErrNoCredentials is returned when the credentials blob is empty.
var ErrNoCredentials = eris.New("sheets: no credentials")

// CleanCredentials trims whitespace and one pair of surrounding quotes, which
// CI secrets and .env files tend to add around the JSON blob.
func CleanCredentials(raw string) string {
	s := strings.TrimSpace(raw)
	for _, q := range []string{`"`, `'`} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			s = strings.TrimSpace(s[1 : len(s)-1])
			break
		}
	}
	return s
}

// NewServiceAccountClient builds a Client authorized with the given service
// account JSON. Tokens are fetched lazily on the first request.
func NewServiceAccountClient(ctx context.Context, credentialsJSON string, opts ...Option) (Client, error) {
	blob := CleanCredentials(credentialsJSON)
	if blob == "" {
		return nil, ErrNoCredentials
	}
	creds, err := google.CredentialsFromJSON(ctx, []byte(blob), Scope)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: parse credentials")
	}

	hc := oauth2.NewClient(ctx, creds.TokenSource)
	hc.Timeout = defaultTimeout
	return NewClient(append([]Option{WithHTTPClient(hc)}, opts...)...), nil
}
