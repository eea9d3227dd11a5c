package middleware

import (
	"strings"

	httpError "repair-service/src/pkg/http-error"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/token"
	"repair-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const authLocal = "auth"

type authClaims struct {
	Metadata token.Metadata `json:"metadata"`
	jwt.RegisteredClaims
}

// VerifyBearer checks the Bearer token and stores the caller identity in the
// request locals for GetUser.
func VerifyBearer(cfg *viper.Viper, logger log.Log) fiber.Handler {
	secret := []byte(cfg.GetString("jwt.secret"))

	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			errObj := httpError.NewUnauthorized()
			errObj.Message = "missing bearer token"
			return utils.ResponseError(errObj, ctx)
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims := new(authClaims)
		parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			logger.Info("middleware", "rejected token", "VerifyBearer", ctx.Path())
			errObj := httpError.NewUnauthorized()
			errObj.Message = "invalid bearer token"
			return utils.ResponseError(errObj, ctx)
		}

		ctx.Locals(authLocal, &claims.Metadata)
		return ctx.Next()
	}
}

func GetUser(ctx *fiber.Ctx) *token.Metadata {
	if metadata, ok := ctx.Locals(authLocal).(*token.Metadata); ok {
		return metadata
	}
	return &token.Metadata{}
}
