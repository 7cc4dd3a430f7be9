package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"academy_go/database"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Namespace selects which credential store a login is checked against.
type Namespace string

const (
	NamespaceAdmin   Namespace = "admin"
	NamespaceTeacher Namespace = "teacher"
)

// Principal is the authenticated actor reconstructed from a token.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Credentials is a login attempt.
type Credentials struct {
	Email     string    `json:"email" validate:"required"`
	Password  string    `json:"password" validate:"required"`
	Namespace Namespace `json:"-"`
}

// Session is what a successful login returns.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

// Claims is the signed token payload.
type Claims struct {
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// PasswordHasher is the hashing primitive used for credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// SessionService issues, validates and revokes session tokens.
type SessionService struct {
	store    database.Store
	hasher   PasswordHasher
	denylist Denylist
	secret   []byte
	ttl      time.Duration
	issuer   string
	now      func() time.Time

	// dummyDigest is verified against when the email is unknown so both failure
	// paths cost one hash comparison.
	dummyDigest string
}

// SessionOptions configures NewSessionService.
type SessionOptions struct {
	Secret   string
	TTL      time.Duration
	Issuer   string
	Denylist Denylist
	Now      func() time.Time
}

func NewSessionService(store database.Store, hasher PasswordHasher, opts SessionOptions) *SessionService {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Denylist == nil {
		opts.Denylist = NewMemoryDenylist()
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		log.WithError(err).Warn("session: could not prepare dummy digest")
	}
	return &SessionService{
		store:       store,
		hasher:      hasher,
		denylist:    opts.Denylist,
		secret:      []byte(opts.Secret),
		ttl:         opts.TTL,
		issuer:      opts.Issuer,
		now:         opts.Now,
		dummyDigest: dummy,
	}
}

// Issue verifies credentials and mints a signed token.
// Unknown email and wrong password fail with the same InvalidCredentials error.
func (s *SessionService) Issue(ctx context.Context, creds Credentials) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	id, role, digest, err := s.lookup(ctx, creds.Namespace, email)
	if err != nil {
		return nil, err
	}
	if id == "" {
		s.hasher.Verify(creds.Password, s.dummyDigest)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(creds.Password, digest) {
		return nil, ErrInvalidCredentials
	}

	p := Principal{ID: id, Role: role}
	token, expiresAt, err := s.sign(p)
	if err != nil {
		return nil, upstream("sign token", err)
	}
	log.WithFields(log.Fields{"principal_id": id, "role": role}).Info("session issued")
	return &Session{Token: token, ExpiresAt: expiresAt, Principal: p}, nil
}

func (s *SessionService) lookup(ctx context.Context, ns Namespace, email string) (string, Role, string, error) {
	switch ns {
	case NamespaceTeacher:
		t, err := s.store.FindTeacherByEmail(ctx, email)
		if database.IsNotFound(err) {
			return "", "", "", nil
		}
		if err != nil {
			return "", "", "", upstream("find teacher", err)
		}
		return t.ID, RoleTeacher, t.Password, nil
	default:
		u, err := s.store.FindUserByEmail(ctx, email)
		if database.IsNotFound(err) {
			return "", "", "", nil
		}
		if err != nil {
			return "", "", "", upstream("find user", err)
		}
		role := Role(u.Role)
		if role != RoleSuperadmin && role != RoleAdmin {
			return "", "", "", nil
		}
		return u.ID, role, u.Password, nil
	}
}

func (s *SessionService) sign(p Principal) (string, time.Time, error) {
	now := s.now()
	// exp is encoded in whole seconds
	expiresAt := now.Add(s.ttl).Truncate(time.Second)
	claims := &Claims{
		PrincipalID: p.ID,
		Role:        string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expiresAt, err
}

func (s *SessionService) parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrMalformedToken
		}
		return nil, ErrInvalidSignature
	}
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}
	switch Role(claims.Role) {
	case RoleSuperadmin, RoleAdmin, RoleTeacher:
	default:
		return nil, ErrMalformedToken
	}
	if claims.PrincipalID == "" {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// Validate verifies signature, expiry and revocation and returns the principal.
func (s *SessionService) Validate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.WithError(err).Error("session: denylist lookup failed")
			return nil, upstream("denylist lookup", err)
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}
	return &Principal{ID: claims.PrincipalID, Role: Role(claims.Role)}, nil
}

// Revoke denylists a valid token until it would have expired.
func (s *SessionService) Revoke(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return err
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.denylist.Revoke(ctx, claims.ID, remaining); err != nil {
		log.WithError(err).Error("session: revoke failed")
		return upstream("revoke token", err)
	}
	log.WithField("principal_id", claims.PrincipalID).Info("session revoked")
	return nil
}

// Authorize validates raw and checks cap against the principal's role.
// Token failures are reported as Unauthenticated wrapping the precise kind.
func (s *SessionService) Authorize(ctx context.Context, raw string, cap Capability) (*Principal, error) {
	if IsPublic(cap) {
		return nil, nil
	}
	p, err := s.Validate(ctx, raw)
	if err != nil {
		if IsUnauthenticated(err) {
			return nil, &Error{Kind: KindUnauthenticated, Err: err}
		}
		return nil, err
	}
	if err := Check(p, cap); err != nil {
		return nil, err
	}
	return p, nil
}

// Profile loads the record behind a principal.
func (s *SessionService) Profile(ctx context.Context, p *Principal) (interface{}, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if p.Role == RoleTeacher {
		t, err := s.store.FindTeacher(ctx, p.ID)
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, upstream("find teacher", err)
		}
		return t, nil
	}
	u, err := s.store.FindUser(ctx, p.ID)
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("find user", err)
	}
	return u, nil
}
