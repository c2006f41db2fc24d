package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"doctransfer/internal/identity"
	"doctransfer/internal/model"
)

// UserLocalKey stores the authenticated model.User in Fiber's context locals.
const UserLocalKey = "user"

// TokenResolver maps a bearer token to the caller identity.
type TokenResolver interface {
	Resolve(token string) (*model.User, error)
}

// Auth authenticates the caller from the Authorization header and records it in the directory.
// A directory failure is logged and does not reject the request.
func Auth(resolver TokenResolver, directory identity.Directory, log *zap.Logger) fiber.Handler {
	log = log.Named("auth")

	return func(c *fiber.Ctx) error {
		user, err := resolver.Resolve(identity.BearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if err := directory.Remember(c.UserContext(), *user); err != nil {
			log.Warn("directory update failed",
				zap.String("request_id", RequestIDFromCtx(c)),
				zap.String("subject_id", user.SubjectID),
				zap.Error(err),
			)
		}

		c.Locals(UserLocalKey, *user)
		return c.Next()
	}
}

// UserFromCtx returns the user stored by Auth.
func UserFromCtx(c *fiber.Ctx) (model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(model.User)
	return u, ok
}

// StaticToken guards machine endpoints with a shared bearer token.
// An empty configured token rejects every request.
func StaticToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}
