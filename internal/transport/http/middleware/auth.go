package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

// UserIDKey is the gin context key for the authenticated user ID.
const UserIDKey = "user_id"

// SessionClaims is the JWT payload backing a dashboard session.
type SessionClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// SessionVerifier validates session tokens and resolves them into sessions.
type SessionVerifier struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionVerifier builds a verifier over the shared session secret.
func NewSessionVerifier(secret string, ttl time.Duration) *SessionVerifier {
	return &SessionVerifier{secret: []byte(secret), ttl: ttl}
}

// IssueToken mints a session token for the given user and tenant.
func (v *SessionVerifier) IssueToken(userID, tenantID uuid.UUID) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token into a domain session.
func (v *SessionVerifier) Verify(token string) (domain.Session, error) {
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse session token: %w", err)
	}
	if !parsed.Valid {
		return domain.Session{}, fmt.Errorf("invalid session token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse user id: %w", err)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse tenant id: %w", err)
	}

	return domain.Session{UserID: userID, TenantID: tenantID}, nil
}

// Authenticate resolves a bearer session token into the request context.
// Non-strict routes use OptionalAuth instead; this variant aborts with 401.
func Authenticate(verifier *SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessionFromRequest(verifier, c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"trace_id": GetTraceID(c),
			})
			return
		}

		attachSession(c, session)
		c.Next()
	}
}

// OptionalAuth resolves a session when a valid token is present and otherwise
// leaves the request anonymous. Admission's `user` identifier strategy falls
// back to IP for anonymous requests.
func OptionalAuth(verifier *SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session, err := sessionFromRequest(verifier, c); err == nil {
			attachSession(c, session)
		}
		c.Next()
	}
}

func attachSession(c *gin.Context, session domain.Session) {
	c.Set(UserIDKey, session.UserID.String())
	c.Request = c.Request.WithContext(domain.ContextWithSession(c.Request.Context(), session))
}

func sessionFromRequest(verifier *SessionVerifier, c *gin.Context) (domain.Session, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return domain.Session{}, fmt.Errorf("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Session{}, fmt.Errorf("invalid authorization format")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return domain.Session{}, fmt.Errorf("missing session token")
	}

	return verifier.Verify(token)
}

// GetUserID retrieves the authenticated user ID from the gin context.
func GetUserID(c *gin.Context) (string, bool) {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
