package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var errBadCredentials = domain.UnauthorizedError{Msg: "Invalid username or password"}

// DefaultRoster is used when no staff file is configured.
func DefaultRoster() []models.Staff {
	return []models.Staff{
		{Username: "ziyad", Name: "Ziyad", Role: RoleAdmin, Password: "ziyad123"},
		{Username: "najad", Name: "Najad", Role: RoleStaff, Password: "najad123"},
		{Username: "babu", Name: "Babu", Role: RoleStaff, Password: "babu123"},
	}
}

type rosterFile struct {
	Staff []models.Staff `yaml:"staff"`
}

// LoadRoster reads a YAML roster ("staff:" list). An empty path returns DefaultRoster.
func LoadRoster(path string) ([]models.Staff, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRoster(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read staff file: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse staff file: %w", err)
	}
	if len(f.Staff) == 0 {
		return nil, errors.New("staff file has no entries")
	}
	return f.Staff, nil
}

type staffClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService checks staff credentials and issues HS256 tokens.
type AuthService struct {
	staff  map[string]models.Staff
	order  []string
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

// NewAuthService indexes the roster by lower-cased username. Plain passwords are
// hashed with bcrypt here so only hashes stay in memory.
func NewAuthService(roster []models.Staff, secret string, ttl time.Duration) (*AuthService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	s := &AuthService{staff: map[string]models.Staff{}, secret: []byte(secret), ttl: ttl}
	for _, st := range roster {
		key := strings.ToLower(strings.TrimSpace(st.Username))
		if key == "" {
			return nil, errors.New("staff entry without username")
		}
		if _, dup := s.staff[key]; dup {
			return nil, fmt.Errorf("duplicate staff username %q", key)
		}
		if st.PasswordHash == "" {
			if st.Password == "" {
				return nil, fmt.Errorf("staff %q has no password", key)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(st.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %q: %w", key, err)
			}
			st.PasswordHash = string(hash)
		}
		st.Password = ""
		st.Username = key
		if st.Role == "" {
			st.Role = RoleStaff
		}
		if st.Name == "" {
			st.Name = st.Username
		}
		s.staff[key] = st
		s.order = append(s.order, key)
	}
	return s, nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login returns a signed token and the public profile.
func (s *AuthService) Login(in models.LoginInput) (string, models.PublicStaff, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return "", models.PublicStaff{}, domain.ValidationError{Msg: "Username and password required"}
	}
	st, ok := s.staff[strings.ToLower(strings.TrimSpace(in.Username))]
	if !ok {
		return "", models.PublicStaff{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(in.Password)); err != nil {
		return "", models.PublicStaff{}, errBadCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, staffClaims{
		Name: st.Name,
		Role: st.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   st.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", models.PublicStaff{}, domain.InternalError{Msg: "sign token", Err: err}
	}
	return signed, st.ToPublic(), nil
}

// Verify parses a token and returns the caller identity it carries.
func (s *AuthService) Verify(raw string) (domain.Identity, error) {
	var claims staffClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Identity{}, domain.UnauthorizedError{Msg: "invalid or expired token", Err: err}
	}
	st, ok := s.staff[claims.Subject]
	if !ok {
		return domain.Identity{}, domain.UnauthorizedError{Msg: "unknown staff"}
	}
	return domain.Identity{Username: st.Username, Name: st.Name, Role: st.Role}, nil
}

// Users lists the roster in configured order.
func (s *AuthService) Users() []models.PublicStaff {
	out := make([]models.PublicStaff, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.staff[key].ToPublic())
	}
	return out
}

// LookupName resolves a display name (as sent in User-Name) to a roster identity.
func (s *AuthService) LookupName(name string) (domain.Identity, bool) {
	name = strings.TrimSpace(name)
	for _, key := range s.order {
		st := s.staff[key]
		if strings.EqualFold(st.Name, name) || st.Username == strings.ToLower(name) {
			return domain.Identity{Username: st.Username, Name: st.Name, Role: st.Role}, true
		}
	}
	return domain.Identity{}, false
}
