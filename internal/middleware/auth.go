package middleware

import (
	"context"
	"log/slog"
	"strings"

	"mdd/internal/auth"
	"mdd/internal/models"

	"github.com/gofiber/fiber/v2"
)

const bearerPrefix = "Bearer "

// TokenValidator checks bearer tokens and extracts their subject.
type TokenValidator interface {
	Check(token string) error
	SubjectUserID(token string) (uint, error)
}

// IdentityResolver loads the user a token refers to. A nil user with a nil
// error means the account no longer exists.
type IdentityResolver interface {
	GetIdentity(ctx context.Context, id uint) (*models.User, error)
}

// BearerToken returns the token from an exact "Bearer <token>" header value.
// Any other shape yields "".
func BearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}

// Authenticate binds an authenticated principal to the request when the
// Authorization header carries a valid token for an existing user. It never
// rejects: every failure leaves the request anonymous.
func Authenticate(tokens TokenValidator, users IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		if err := tokens.Check(token); err != nil {
			Logger.DebugContext(ctx, "bearer token rejected", slog.String("reason", err.Error()))
			return c.Next()
		}

		userID, err := tokens.SubjectUserID(token)
		if err != nil {
			Logger.DebugContext(ctx, "bearer token subject unusable", slog.String("reason", err.Error()))
			return c.Next()
		}

		user, err := users.GetIdentity(ctx, userID)
		if err != nil {
			Logger.WarnContext(ctx, "identity lookup failed; continuing anonymously",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			return c.Next()
		}
		if user == nil {
			Logger.DebugContext(ctx, "token subject no longer exists", slog.Uint64("user_id", uint64(userID)))
			return c.Next()
		}

		principal := auth.Principal{
			UserID:   user.ID,
			Username: user.Username,
			Roles:    []string{auth.RoleUser},
		}
		ctx = auth.WithPrincipal(ctx, principal)
		ctx = context.WithValue(ctx, UserIDKey, user.ID)
		c.SetUserContext(ctx)
		c.Locals("userID", user.ID)
		c.Locals("username", user.Username)

		return c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentPrincipal(c); !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		return c.Next()
	}
}

// CurrentPrincipal returns the principal bound by Authenticate, if any.
func CurrentPrincipal(c *fiber.Ctx) (auth.Principal, bool) {
	return auth.PrincipalFrom(c.UserContext())
}
