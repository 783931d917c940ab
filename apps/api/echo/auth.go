package echoapi

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/session"
)

var (
	tokenContextKey    = "sessionToken"
	sessionContextKey  = "session"
	identityContextKey = "identity"
)

func init() {
	// token expiry follows the application clock
	jwt.TimeFunc = func() time.Time { return core.NowFunc() }
}

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the browser context id. Role flags are informational only:
// access is always decided from the server-side session.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Code         string `json:"code,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"`   // -> STUDENT PORTAL
	IsProfessor  bool   `json:"is_professor,omitempty"` // -> PROFESSOR PORTAL
	IsAdmin      bool   `json:"is_admin,omitempty"`     // -> ADMIN PORTAL
}

type jwtSigner struct {
	config  middleware.JWTConfig
	appName string
	expiry  time.Duration
	refresh time.Duration
}

func newJWTSigner(conf *core.Config) *jwtSigner {
	return &jwtSigner{
		config: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    tokenContextKey,
			Claims:        new(Claims),
		},
		appName: conf.AppName,
		expiry:  conf.Server.JWTExpirationDelta,
		refresh: conf.Server.JWTRefreshExpirationDelta,
	}
}

func (js *jwtSigner) claims(contextID string, i identity.Identity, origIat ...int64) *Claims {
	now := core.NowFunc()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    js.appName,
			Subject:   contextID,
			Audience:  "EspanolFacil",
			ExpiresAt: now.Add(js.expiry).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        i.Email,
		Code:         i.Code,
		IsStudent:    i.Role == identity.RoleStudent,
		IsProfessor:  i.Role == identity.RoleProfessor,
		IsAdmin:      i.Role == identity.RoleAdmin,
	}
}

// generate signs claims into a token string.
func (js *jwtSigner) generate(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(js.config.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(js.config.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// parse validates a raw token string outside of the JWT middleware.
func (js *jwtSigner) parse(raw string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != js.config.SigningMethod {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return js.config.SigningKey, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// contextID returns the browser context of an unauthenticated request: the one
// of a still valid bearer token when there is one, a new one otherwise.
func (js *jwtSigner) contextID(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if raw := strings.TrimPrefix(auth, "Bearer "); raw != "" && raw != auth {
		if claims, err := js.parse(raw); err == nil && claims.Subject != "" {
			return claims.Subject
		}
	}
	return uuid.NewString()
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextSession(ctx echo.Context) (*session.Manager, error) {
	if m, ok := ctx.Get(sessionContextKey).(*session.Manager); ok {
		return m, nil
	}
	return nil, errUnauthorized
}

// getContextIdentity returns the identity admitted by the gate.
func getContextIdentity(ctx echo.Context) (identity.Identity, error) {
	if i, ok := ctx.Get(identityContextKey).(identity.Identity); ok {
		return i, nil
	}
	return identity.Identity{}, errUnauthorized
}

func (js *jwtSigner) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	i, err := getContextIdentity(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context identity")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(js.refresh)
	if core.NowFunc().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := js.generate(js.claims(claims.Subject, i, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
