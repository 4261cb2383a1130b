package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "staffToken",
		Claims:        new(Claims),
	}

	appName          string
	secretKey        []byte
	jwtExpiration    time.Duration
	jwtRefreshWindow time.Duration
)

// initAuth wires the auth package state from the app config; called once
// by NewServer.
func initAuth(conf *core.Config) {
	appName = conf.AppName
	secretKey = []byte(conf.SecretKey)
	jwtExpiration = conf.Server.JWTExpirationDelta
	jwtRefreshWindow = conf.Server.JWTRefreshExpirationDelta
	appJWTConfig.SigningKey = secretKey
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

func GetStudentClaims(std student.Student, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    appName,
			Subject:   std.ID,
			Audience:  "Dashboard",
			ExpiresAt: now.Add(jwtExpiration).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        std.Email,
		FullName:     std.FullName.String,
		IsAdmin:      std.IsAdmin,
	}
}

// authenticate checks the credentials and that the account may access the
// admin dashboard.
func authenticate(ctx echo.Context, email, pwd string, svc student.Service) (*Claims, error) {
	std, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding student by email")
	}
	if err = std.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !std.IsAdmin {
		return nil, errAccessDenied
	}
	return GetStudentClaims(std), nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return signed, nil
}

// refreshToken issues a new token as long as the original issue time is
// still within the refresh window.
func refreshToken(claims *Claims) (string, error) {
	origIat := time.Unix(claims.OrigIssuedAt, 0)
	if time.Now().After(origIat.Add(jwtRefreshWindow)) {
		return "", errRefreshExpired
	}
	std := student.Student{ID: claims.Subject, Email: claims.Email, IsAdmin: claims.IsAdmin}
	std.FullName.SetValid(claims.FullName)
	return GenerateToken(GetStudentClaims(std, claims.OrigIssuedAt))
}
