package auth

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

// ErrBadCredentials is returned for a failed admin login.
const ErrBadCredentials = errors.ConstError("invalid email or password")

// ErrSessionRevoked is returned for tokens invalidated by logout.
const ErrSessionRevoked = errors.ConstError("session revoked")

// GateConfig configures the admin gate.
type GateConfig struct {
	Email      string
	Password   string
	Issuer     string
	SigningKey string
	TTL        time.Duration
	Clock      clock.Clock
}

// Gate checks the fixed admin credential pair and tracks sessions.
type Gate struct {
	email        string
	passwordHash []byte
	issuer       string
	key          string
	ttl          time.Duration
	clock        clock.Clock

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewGate hashes the configured password once so logins never compare
// plaintext.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, errors.NotValidf("empty admin credentials")
	}
	if cfg.SigningKey == "" {
		return nil, errors.NotValidf("empty signing key")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Annotate(err, "hashing admin password")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	return &Gate{
		email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		passwordHash: hash,
		issuer:       cfg.Issuer,
		key:          cfg.SigningKey,
		ttl:          cfg.TTL,
		clock:        clk,
		revoked:      make(map[string]time.Time),
	}, nil
}

// Login issues a session for a matching credential pair.
func (g *Gate) Login(email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(g.email)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	if !emailOK || !passOK {
		return Session{}, ErrBadCredentials
	}
	return Issue(g.email, adminRole, g.issuer, g.key, g.ttl, g.clock.Now())
}

// Verify parses a token and rejects revoked sessions.
func (g *Gate) Verify(token string) (Claims, error) {
	claims, err := Parse(token, g.key, g.issuer, jwt.WithTimeFunc(g.clock.Now))
	if err != nil {
		return Claims{}, err
	}
	if claims.Role != adminRole {
		return Claims{}, errors.Unauthorizedf("role %q", claims.Role)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, gone := g.revoked[claims.ID]; gone {
		return Claims{}, ErrSessionRevoked
	}
	return claims, nil
}

// Logout revokes the session with the given token id.
func (g *Gate) Logout(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revoked[id] = g.clock.Now()
}
