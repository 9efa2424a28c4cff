package echoportal

import (
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core/evaluation"
)

var (
	nowFunc = time.Now // mockable

	sessionCookieName = "feedback_session"
	contextVisitorKey = "visitor"
	signingMethod     = jwt.SigningMethodHS256

	errInvalidSubject = errors.New("session subject is not a visitor id")
	errSessionExpired = errors.New("session expired")
)

// visitorClaims is the JWT stored in the session cookie. The subject is the visitor id.
type visitorClaims struct {
	jwt.StandardClaims
}

// visitor holds the evaluation state of one browser. Its mutex serializes that browser's requests.
type visitor struct {
	mu       sync.Mutex
	id       string
	ctrl     *evaluation.Controller
	loaded   bool // department directory fetched
	lastSeen time.Time
}

// sessionStore keeps one controller per visitor and forgets visitors idle for longer than ttl.
type sessionStore struct {
	mu            sync.Mutex
	visitors      map[string]*visitor
	ttl           time.Duration
	secret        []byte
	issuer        string
	newController func() *evaluation.Controller
}

func newSessionStore(secret, issuer string, ttl time.Duration, newController func() *evaluation.Controller) *sessionStore {
	return &sessionStore{
		visitors:      make(map[string]*visitor),
		ttl:           ttl,
		secret:        []byte(secret),
		issuer:        issuer,
		newController: newController,
	}
}

// generateToken signs a session token for the visitor.
func (s *sessionStore) generateToken(visitorID string) (string, error) {
	now := nowFunc()
	claims := &visitorClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.issuer,
			Subject:   visitorID,
			ExpiresAt: now.Add(s.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
	ss, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing session token")
	}
	return ss, nil
}

// parseToken returns the claims of a valid session token.
func (s *sessionStore) parseToken(tokenString string) (*visitorClaims, error) {
	claims := new(visitorClaims)
	parser := &jwt.Parser{
		ValidMethods:         []string{signingMethod.Alg()},
		SkipClaimsValidation: true, // expiry is checked against nowFunc below
	}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != signingMethod.Alg() {
			return nil, errors.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing session token")
	}
	if !claims.VerifyExpiresAt(nowFunc().Unix(), true) {
		return nil, errSessionExpired
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, errInvalidSubject
	}
	return claims, nil
}

// get returns the visitor with the given id, creating it (with a fresh controller) when unknown or expired.
func (s *sessionStore) get(id string) *visitor {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowFunc()
	s.sweep(now)

	v, ok := s.visitors[id]
	if !ok {
		v = &visitor{id: id, ctrl: s.newController()}
		s.visitors[id] = v
	}
	v.lastSeen = now
	return v
}

// sweep drops idle visitors. s.mu must be held.
func (s *sessionStore) sweep(now time.Time) {
	for id, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, id)
		}
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// middleware identifies the visitor from the session cookie (issuing a new one when missing or invalid)
// and holds the visitor's lock for the rest of the request.
func (s *sessionStore) middleware(secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var id string
			var reissue bool

			if cookie, err := ctx.Cookie(sessionCookieName); err == nil {
				if claims, err := s.parseToken(cookie.Value); err == nil {
					id = claims.Subject
					// keep the cookie alive while the visitor is active
					reissue = nowFunc().Add(s.ttl / 2).Unix() > claims.ExpiresAt
				}
			}
			if id == "" {
				id = uuid.New().String()
				reissue = true
			}

			if reissue {
				token, err := s.generateToken(id)
				if err != nil {
					return err
				}
				ctx.SetCookie(&http.Cookie{
					Name:     sessionCookieName,
					Value:    token,
					Path:     "/",
					Expires:  nowFunc().Add(s.ttl),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			v := s.get(id)
			v.mu.Lock()
			defer v.mu.Unlock()

			ctx.Set(contextVisitorKey, v)
			return next(ctx)
		}
	}
}

func getContextVisitor(ctx echo.Context) (*visitor, error) {
	if v, ok := ctx.Get(contextVisitorKey).(*visitor); ok {
		return v, nil
	}
	return nil, errors.New("visitor not found in echo.Context")
}
