package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/student"
)

var errClaimsNotFoundInCtx = errors.New("claims not found in echo.Context")

// adminMiddleware only lets admin accounts through.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return claims, nil
		}
	}
	return nil, errClaimsNotFoundInCtx
}

// getContextStudent looks up the full account of the authenticated caller.
func getContextStudent(ctx echo.Context, svc student.Service) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, err
	}
	std, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting context student")
	}
	return std, nil
}

// contextStudent builds a lightweight acting account from the claims only,
// without a store round trip; enough to stamp created_by.
func contextStudent(ctx echo.Context) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, err
	}
	std := student.Student{ID: claims.Subject, Email: claims.Email, IsAdmin: claims.IsAdmin}
	std.FullName.SetValid(claims.FullName)
	return std, nil
}
