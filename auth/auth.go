package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"mealdesk/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
)

// mySigningKey should be a strong, randomly generated secret key,
// and it should be stored securely (e.g., in environment variables,
// a key management service, etc.), NOT hardcoded in your source code.
var mySigningKey = []byte("mySigningKey")

// SetSigningKey allows setting the key from outside the package.
func SetSigningKey(key []byte) {
	if len(key) > 0 {
		mySigningKey = key
	}
}

// CookieName is the cookie the session token travels in. The cookie is
// the sole mechanism identifying the caller on protected routes.
const CookieName = "token"

// Session lifetimes: one day by default, seven when the caller asks
// for a persistent session.
const (
	SessionDuration         = 24 * time.Hour
	ExtendedSessionDuration = 7 * 24 * time.Hour
)

// SessionTTL returns the session lifetime for the given remember-me choice.
func SessionTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return ExtendedSessionDuration
	}
	return SessionDuration
}

// CustomClaims represents the custom claims carried in the session token.
type CustomClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new signed session token for the given user.
func GenerateToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "mealdesk",
			Subject:   "user-auth",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(mySigningKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseAndValidateToken verifies signature and expiry and returns the claims.
func ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return mySigningKey, nil
	})

	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, errors.New("malformed token")
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				return nil, errors.New("token is either expired or not active yet")
			} else if ve.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
				return nil, errors.New("invalid token signature")
			}
		}
		return nil, fmt.Errorf("couldn't handle this token: %w", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// NewSessionCookie builds the HTTP-only session cookie with a max-age
// matching the token expiry. secure should be true behind TLS.
func NewSessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds a cookie that clears the session.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// AuthFilter creates a go-restful FilterFunction that authenticates the
// session cookie and stores the caller's identity in request attributes.
func AuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		cookie, err := req.Request.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "No token, authorization denied"}, restful.MIME_JSON)
			return
		}

		claims, err := ParseAndValidateToken(cookie.Value)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}

		// Store user information in request attributes for use by subsequent processing functions
		req.SetAttribute("user_id", claims.UserID)
		req.SetAttribute("role", claims.Role)

		chain.ProcessFilter(req, resp)
	}
}

// AdminFilter requires the admin role. It must be chained after
// AuthFilter, which populates the role attribute.
func AdminFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		role, ok := req.Attribute("role").(string)
		if !ok || role != models.RoleAdmin {
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Admin access required"}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// RequestingUserID extracts the user id set by AuthFilter.
func RequestingUserID(req *restful.Request) (uint, bool) {
	userIDAttr := req.Attribute("user_id")
	if userIDAttr == nil {
		return 0, false
	}
	userID, ok := userIDAttr.(uint)
	return userID, ok
}
