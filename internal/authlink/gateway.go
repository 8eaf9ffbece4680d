// Package authlink mints passwordless sign-in links and exchanges them for session tokens.
package authlink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"phrasebook/internal/auth"
	"phrasebook/internal/credentials"
	"phrasebook/internal/util"
)

var (
	ErrAuth          = errors.New("auth error")
	ErrConfiguration = fmt.Errorf("%w: provider configuration invalid", ErrAuth)
	ErrRefresh       = fmt.Errorf("%w: credential refresh failed", ErrAuth)
)

const (
	DefaultLinkTTL    = time.Hour
	DefaultSessionTTL = 24 * time.Hour

	linkKeyLabel    = "login-link"
	sessionKeyLabel = "session"
)

// ActionCodeSettings travel inside every link so that clients can finish the flow.
type ActionCodeSettings struct {
	ContinueURL           string
	HandleCodeInApp       bool
	IOSBundleID           string
	AndroidPackageName    string
	AndroidInstallApp     bool
	AndroidMinimumVersion string
}

func (s ActionCodeSettings) Validate() error {
	u, err := url.Parse(strings.TrimSpace(s.ContinueURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: continue url must be an absolute http(s) url", ErrConfiguration)
	}
	if (s.AndroidInstallApp || s.AndroidMinimumVersion != "") && strings.TrimSpace(s.AndroidPackageName) == "" {
		return fmt.Errorf("%w: android package name is required", ErrConfiguration)
	}
	return nil
}

type LoginLink struct {
	URL       string    `json:"link"`
	Email     string    `json:"email"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Ledger records consumed link ids. ConsumeLink reports false when the id was already used.
type Ledger interface {
	ConsumeLink(ctx context.Context, linkID string, expiresAt time.Time) (bool, error)
}

type Config struct {
	Settings   ActionCodeSettings
	LinkTTL    time.Duration
	SessionTTL time.Duration
	Logger     *zap.Logger
}

type linkClaims struct {
	Email                 string `json:"email"`
	HandleCodeInApp       bool   `json:"handle_in_app,omitempty"`
	IOSBundleID           string `json:"ios_bundle_id,omitempty"`
	AndroidPackageName    string `json:"android_package_name,omitempty"`
	AndroidInstallApp     bool   `json:"android_install_app,omitempty"`
	AndroidMinimumVersion string `json:"android_min_version,omitempty"`
	jwt.RegisteredClaims
}

type Gateway struct {
	source     credentials.Source
	ledger     Ledger
	settings   ActionCodeSettings
	linkTTL    time.Duration
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func New(source credentials.Source, ledger Ledger, cfg Config) *Gateway {
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = DefaultLinkTTL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Gateway{
		source:     source,
		ledger:     ledger,
		settings:   cfg.Settings,
		linkTTL:    cfg.LinkTTL,
		sessionTTL: cfg.SessionTTL,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// UserIDForEmail derives the stable user id for an address. Case and surrounding space are ignored.
func UserIDForEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "usr_" + hex.EncodeToString(sum[:])[:28]
}

func (g *Gateway) RequestLoginLink(ctx context.Context, email string) (LoginLink, error) {
	if err := ctx.Err(); err != nil {
		return LoginLink{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return LoginLink{}, fmt.Errorf("%w: invalid email address", ErrAuth)
	}
	normalized := strings.ToLower(addr.Address)

	if err := g.settings.Validate(); err != nil {
		return LoginLink{}, err
	}
	cred, err := g.source.Current()
	if err != nil {
		return LoginLink{}, fmt.Errorf("%w: %v", ErrRefresh, err)
	}
	if strings.TrimSpace(cred.ProjectID) == "" {
		return LoginLink{}, fmt.Errorf("%w: credential has no project id", ErrConfiguration)
	}
	key, err := cred.DeriveKey(linkKeyLabel)
	if err != nil {
		return LoginLink{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	now := g.now()
	expiresAt := now.Add(g.linkTTL)
	userID := UserIDForEmail(normalized)
	claims := linkClaims{
		Email:                 normalized,
		HandleCodeInApp:       g.settings.HandleCodeInApp,
		IOSBundleID:           g.settings.IOSBundleID,
		AndroidPackageName:    g.settings.AndroidPackageName,
		AndroidInstallApp:     g.settings.AndroidInstallApp,
		AndroidMinimumVersion: g.settings.AndroidMinimumVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        util.NewID("lnk"),
			Issuer:    cred.ClientEmail,
			Audience:  jwt.ClaimStrings{cred.ProjectID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	code, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return LoginLink{}, fmt.Errorf("%w: sign link: %v", ErrAuth, err)
	}

	target, _ := url.Parse(strings.TrimSpace(g.settings.ContinueURL))
	query := target.Query()
	query.Set("mode", "signIn")
	query.Set("oobCode", code)
	query.Set("apiKey", cred.ProjectID)
	query.Set("lang", "en")
	target.RawQuery = query.Encode()

	return LoginLink{
		URL:       target.String(),
		Email:     normalized,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyLoginLink exchanges a link, or a bare code, for a session token. Each link works once.
// Every failure reports false.
func (g *Gateway) VerifyLoginLink(ctx context.Context, link string) (SessionToken, bool) {
	code := extractCode(link)
	if code == "" {
		g.logger.Debug("login link rejected", zap.String("reason", "no code"))
		return SessionToken{}, false
	}
	cred, err := g.source.Current()
	if err != nil {
		g.logger.Warn("login link rejected", zap.String("reason", "credential"), zap.Error(err))
		return SessionToken{}, false
	}
	key, err := cred.DeriveKey(linkKeyLabel)
	if err != nil {
		return SessionToken{}, false
	}

	var claims linkClaims
	parsed, err := jwt.ParseWithClaims(code, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(cred.ProjectID),
		jwt.WithIssuer(cred.ClientEmail),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !parsed.Valid {
		g.logger.Debug("login link rejected", zap.String("reason", "code"), zap.Error(err))
		return SessionToken{}, false
	}
	if claims.ID == "" || claims.Subject != UserIDForEmail(claims.Email) {
		g.logger.Debug("login link rejected", zap.String("reason", "claims"))
		return SessionToken{}, false
	}

	fresh, err := g.ledger.ConsumeLink(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		g.logger.Warn("login link rejected", zap.String("reason", "ledger"), zap.Error(err))
		return SessionToken{}, false
	}
	if !fresh {
		g.logger.Debug("login link rejected", zap.String("reason", "already used"), zap.String("link_id", claims.ID))
		return SessionToken{}, false
	}

	sessionKey, err := cred.DeriveKey(sessionKeyLabel)
	if err != nil {
		return SessionToken{}, false
	}
	expiresAt := g.now().Add(g.sessionTTL)
	token, err := auth.IssueToken(sessionKey, claims.Subject, claims.Email, util.NewID("ses"), expiresAt)
	if err != nil {
		g.logger.Error("issue session token", zap.Error(err))
		return SessionToken{}, false
	}
	return SessionToken{
		Token:     token,
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: expiresAt,
	}, true
}

// ParseSessionToken checks a token minted by VerifyLoginLink against the current credential.
func (g *Gateway) ParseSessionToken(token string) (auth.Claims, error) {
	cred, err := g.source.Current()
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrRefresh, err)
	}
	key, err := cred.DeriveKey(sessionKeyLabel)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return auth.ParseToken(key, token)
}

func extractCode(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if u, err := url.Parse(link); err == nil {
		if code := u.Query().Get("oobCode"); code != "" {
			return code
		}
	}
	// A bare code is a compact JWS: three dot-separated segments and nothing else.
	if strings.Count(link, ".") == 2 && !strings.ContainsAny(link, "/?&= ") {
		return link
	}
	return ""
}
