package vertex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	apperrors "github.com/veoflow/server/internal/shared/errors"
	"github.com/veoflow/server/internal/utils/metrics"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"

	assertionLifetime = time.Hour
)

// Credential carries the per-request credential material. At most one field
// is expected to be set; both empty falls back to the server-configured
// strategies.
type Credential struct {
	AccessToken        string
	ServiceAccountJSON string
}

// serviceAccountKey is the subset of a Google service-account key file
// needed for the JWT-bearer token exchange.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Resolver resolves credentials to bearer tokens. Strategies are tried in
// order: explicit access token, per-request service-account JSON, the
// server-configured key file, then the gcloud CLI when enabled. Resolved
// tokens are never persisted.
type Resolver struct {
	httpClient      *http.Client
	tokenURL        string
	credentialsFile string
	allowGcloudCLI  bool
	logger          *zap.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

// ResolverConfig holds resolver configuration.
type ResolverConfig struct {
	HTTPClient      *http.Client
	TokenURL        string
	CredentialsFile string
	AllowGcloudCLI  bool
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
}

// NewResolver creates a new credential resolver.
func NewResolver(cfg *ResolverConfig) *Resolver {
	r := &Resolver{
		httpClient:      cfg.HTTPClient,
		tokenURL:        cfg.TokenURL,
		credentialsFile: cfg.CredentialsFile,
		allowGcloudCLI:  cfg.AllowGcloudCLI,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		now:             time.Now,
	}
	if r.httpClient == nil {
		r.httpClient = http.DefaultClient
	}
	if r.tokenURL == "" {
		r.tokenURL = defaultTokenURL
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Resolve returns a bearer token for the given credential.
//
// A failure of a per-request credential (service-account JSON supplied by
// the caller) is returned immediately rather than silently falling back to
// the server's own credentials.
func (r *Resolver) Resolve(ctx context.Context, cred Credential) (string, error) {
	if cred.AccessToken != "" {
		r.record("bearer", "success")
		return cred.AccessToken, nil
	}

	if cred.ServiceAccountJSON != "" {
		token, err := r.exchangeServiceAccount(ctx, []byte(cred.ServiceAccountJSON))
		if err != nil {
			r.record("service_account_json", "error")
			return "", err
		}
		r.record("service_account_json", "success")
		return token.AccessToken, nil
	}

	var errs []error

	if r.credentialsFile != "" {
		data, err := os.ReadFile(r.credentialsFile)
		if err == nil {
			token, exchErr := r.exchangeServiceAccount(ctx, data)
			if exchErr == nil {
				r.record("credentials_file", "success")
				return token.AccessToken, nil
			}
			err = exchErr
		}
		r.record("credentials_file", "error")
		r.logger.Warn("credentials file strategy failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("credentials file: %w", err))
	}

	if r.allowGcloudCLI {
		token, err := gcloudAccessToken(ctx)
		if err == nil {
			r.record("gcloud_cli", "success")
			return token, nil
		}
		r.record("gcloud_cli", "error")
		r.logger.Warn("gcloud CLI strategy failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("gcloud CLI: %w", err))
	}

	if len(errs) > 0 {
		return "", apperrors.Auth("unable to authenticate with configured credentials", errors.Join(errs...))
	}
	return "", apperrors.Auth("either access token or service account JSON is required", nil)
}

// HasFallback reports whether the resolver can produce a token without any
// per-request credential material.
func (r *Resolver) HasFallback() bool {
	return r.credentialsFile != "" || r.allowGcloudCLI
}

// TokenSource returns an oauth2.TokenSource backed by this resolver.
// Tokens are reused until they expire.
func (r *Resolver) TokenSource(ctx context.Context, cred Credential) oauth2.TokenSource {
	if cred.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.AccessToken})
	}
	return oauth2.ReuseTokenSource(nil, &resolverSource{ctx: ctx, resolver: r, cred: cred})
}

type resolverSource struct {
	ctx      context.Context
	resolver *Resolver
	cred     Credential
}

func (s *resolverSource) Token() (*oauth2.Token, error) {
	if s.cred.ServiceAccountJSON != "" {
		return s.resolver.exchangeServiceAccount(s.ctx, []byte(s.cred.ServiceAccountJSON))
	}
	token, err := s.resolver.Resolve(s.ctx, s.cred)
	if err != nil {
		return nil, err
	}
	// Strategy tokens carry no expiry metadata; treat them as short-lived.
	return &oauth2.Token{AccessToken: token, Expiry: time.Now().Add(5 * time.Minute)}, nil
}

// exchangeServiceAccount signs a JWT assertion with the service account key
// and exchanges it for an access token via the JWT-bearer grant.
func (r *Resolver) exchangeServiceAccount(ctx context.Context, keyJSON []byte) (*oauth2.Token, error) {
	var key serviceAccountKey
	if err := json.Unmarshal(keyJSON, &key); err != nil {
		return nil, apperrors.Auth("invalid service account JSON", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, apperrors.Auth("invalid service account JSON", nil)
	}

	assertion, err := r.signAssertion(key)
	if err != nil {
		return nil, apperrors.Auth("failed to sign service account assertion", err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrantType},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Auth("failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Auth("token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Auth("failed to read token response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Auth(
			fmt.Sprintf("token exchange failed (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, apperrors.Auth("invalid token response", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, apperrors.Auth("token response missing access_token", nil)
	}

	token := &oauth2.Token{AccessToken: tokenResp.AccessToken}
	if tokenResp.ExpiresIn > 0 {
		token.Expiry = r.now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}
	return token, nil
}

// signAssertion builds the RS256-signed JWT the token endpoint expects.
func (r *Resolver) signAssertion(key serviceAccountKey) (string, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	now := r.now()
	claims := jwt.MapClaims{
		"iss":   key.ClientEmail,
		"scope": cloudPlatformScope,
		"aud":   r.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// gcloudAccessToken shells out to the gcloud CLI for a token.
func gcloudAccessToken(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "gcloud", "auth", "print-access-token").Output()
	if err != nil {
		return "", fmt.Errorf("gcloud auth print-access-token: %w", err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("gcloud returned an empty token")
	}
	return token, nil
}

func (r *Resolver) record(strategy, status string) {
	if r.metrics != nil {
		r.metrics.RecordTokenExchange(strategy, status)
	}
}
