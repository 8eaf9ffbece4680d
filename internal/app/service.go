package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"phrasebook/internal/auth"
	"phrasebook/internal/authlink"
	"phrasebook/internal/glyph"
	"phrasebook/internal/rbac"
	"phrasebook/internal/session"
	"phrasebook/internal/store"
)

// Session is the per-request authentication state. The zero value is unauthenticated.
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

func (s Session) State() rbac.State {
	return rbac.For(s.UserID)
}

type authGateway interface {
	RequestLoginLink(ctx context.Context, email string) (authlink.LoginLink, error)
	VerifyLoginLink(ctx context.Context, link string) (authlink.SessionToken, bool)
	ParseSessionToken(token string) (auth.Claims, error)
}

type sessionStore interface {
	SaveSession(ctx context.Context, tokenHash string, record session.Record, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (session.Record, error)
	RevokeSession(ctx context.Context, tokenHash string) error
	Ping(ctx context.Context) error
}

type mailer interface {
	SendLoginLinkEmail(to, link string, expiresAt time.Time) error
}

type Deps struct {
	Gateway  authGateway
	Store    store.PhraseStore
	Sessions sessionStore
	Glyphs   glyph.Generator
	// Mailer is optional. Links are always returned to the caller either way.
	Mailer  mailer
	Metrics *Metrics
	Logger  *zap.Logger
}

type Service struct {
	gateway  authGateway
	store    store.PhraseStore
	sessions sessionStore
	glyphs   glyph.Generator
	mailer   mailer
	metrics  *Metrics
	logger   *zap.Logger
}

func New(deps Deps) *Service {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{
		gateway:  deps.Gateway,
		store:    deps.Store,
		sessions: deps.Sessions,
		glyphs:   deps.Glyphs,
		mailer:   deps.Mailer,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

func (s *Service) authorize(sess Session, action rbac.Action) error {
	if !rbac.Can(sess.State(), action) {
		return errUnauthorized
	}
	return nil
}

// RequestLoginLink mints a sign-in link for email. The caller stays unauthenticated and shows the link.
func (s *Service) RequestLoginLink(ctx context.Context, email string) (authlink.LoginLink, error) {
	if err := s.authorize(Session{}, rbac.ActionRequestLink); err != nil {
		return authlink.LoginLink{}, err
	}
	email, err := required("email", email)
	if err != nil {
		return authlink.LoginLink{}, err
	}

	link, err := s.gateway.RequestLoginLink(ctx, email)
	s.metrics.LoginLinks.WithLabelValues(result(err)).Inc()
	if err != nil {
		s.logger.Warn("login link request failed", zap.Error(err))
		return authlink.LoginLink{}, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendLoginLinkEmail(link.Email, link.URL, link.ExpiresAt); err != nil {
			s.logger.Warn("login link email failed", zap.String("user_id", link.UserID), zap.Error(err))
		}
	}
	s.logger.Info("login link issued", zap.String("user_id", link.UserID), zap.Time("expires_at", link.ExpiresAt))
	return link, nil
}

// VerifyLoginLink exchanges link for a session. ok is false for any invalid, expired or reused link;
// err is only set when the session could not be recorded.
func (s *Service) VerifyLoginLink(ctx context.Context, link string) (Session, bool, error) {
	token, ok := s.gateway.VerifyLoginLink(ctx, link)
	if !ok {
		s.metrics.LinkVerifications.WithLabelValues("invalid").Inc()
		return Session{}, false, nil
	}

	record := session.Record{UserID: token.UserID, Email: token.Email, CreatedAt: time.Now().UTC()}
	if err := s.sessions.SaveSession(ctx, auth.HashToken(token.Token), record, token.ExpiresAt); err != nil {
		s.metrics.LinkVerifications.WithLabelValues("error").Inc()
		return Session{}, false, fmt.Errorf("save session: %w", err)
	}
	s.metrics.LinkVerifications.WithLabelValues("ok").Inc()
	s.logger.Info("session started", zap.String("user_id", token.UserID))

	return Session{
		Token:     token.Token,
		UserID:    token.UserID,
		Email:     token.Email,
		ExpiresAt: token.ExpiresAt,
	}, true, nil
}

// SessionFromToken resolves a bearer or cookie token. The token must verify and its record must still exist.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := s.gateway.ParseSessionToken(token)
	if err != nil {
		return Session{}, err
	}
	record, err := s.sessions.LookupSession(ctx, auth.HashToken(token))
	if errors.Is(err, session.ErrNotFound) {
		return Session{}, auth.ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}
	if record.UserID != claims.Subject {
		return Session{}, auth.ErrInvalidToken
	}

	sess := Session{Token: token, UserID: record.UserID, Email: record.Email}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, sess Session) error {
	if err := s.authorize(sess, rbac.ActionLogout); err != nil {
		return err
	}
	if err := s.sessions.RevokeSession(ctx, auth.HashToken(sess.Token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("session ended", zap.String("user_id", sess.UserID))
	return nil
}

// AddCategory generates the category glyph from name and then writes the category.
// A generation failure aborts the write.
func (s *Service) AddCategory(ctx context.Context, sess Session, name string) (store.Category, error) {
	if err := s.authorize(sess, rbac.ActionAddCategory); err != nil {
		return store.Category{}, err
	}
	name, err := required("name", name)
	if err != nil {
		return store.Category{}, err
	}

	emoji, err := s.glyphs.Generate(ctx, name, glyph.CategoryOptions)
	s.metrics.GlyphGenerations.WithLabelValues("category", result(err)).Inc()
	if err != nil {
		s.logger.Warn("category glyph failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return store.Category{}, err
	}

	id, err := s.store.AddCategory(ctx, sess.UserID, name, emoji)
	s.metrics.StoreWrites.WithLabelValues("category", result(err)).Inc()
	if err != nil {
		return store.Category{}, err
	}
	return store.Category{ID: id, Name: name, Emoji: emoji}, nil
}

func (s *Service) Categories(ctx context.Context, sess Session) ([]store.Category, error) {
	if err := s.authorize(sess, rbac.ActionList); err != nil {
		return nil, err
	}
	return store.Collect(s.store.Categories(ctx, sess.UserID))
}

func (s *Service) AddPhrase(ctx context.Context, sess Session, categoryID, text string) (store.Phrase, error) {
	if err := s.authorize(sess, rbac.ActionAddPhrase); err != nil {
		return store.Phrase{}, err
	}
	categoryID, err := required("categoryId", categoryID)
	if err != nil {
		return store.Phrase{}, err
	}
	text, err = required("text", text)
	if err != nil {
		return store.Phrase{}, err
	}

	id, err := s.store.AddPhrase(ctx, sess.UserID, categoryID, text)
	s.metrics.StoreWrites.WithLabelValues("phrase", result(err)).Inc()
	if err != nil {
		return store.Phrase{}, err
	}
	return store.Phrase{ID: id, Text: text}, nil
}

func (s *Service) Phrases(ctx context.Context, sess Session, categoryID string) ([]store.Phrase, error) {
	if err := s.authorize(sess, rbac.ActionList); err != nil {
		return nil, err
	}
	return store.Collect(s.store.Phrases(ctx, sess.UserID, categoryID))
}

// Emojify runs the free-text demo.
func (s *Service) Emojify(ctx context.Context, sess Session, text string) (string, error) {
	if err := s.authorize(sess, rbac.ActionEmojify); err != nil {
		return "", err
	}
	text, err := required("text", text)
	if err != nil {
		return "", err
	}
	out, err := s.glyphs.Generate(ctx, text, glyph.DemoOptions)
	s.metrics.GlyphGenerations.WithLabelValues("demo", result(err)).Inc()
	if err != nil {
		s.logger.Warn("demo glyph failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return "", err
	}
	return out, nil
}

// Checks pings every backing service and reports failures by name.
func (s *Service) Checks(ctx context.Context) map[string]error {
	return map[string]error{
		"store":    s.store.Ping(ctx),
		"sessions": s.sessions.Ping(ctx),
	}
}
