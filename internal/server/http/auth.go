package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	bearerPrefix = "Bearer "

	// ctxKeySubject 校验通过后写入 gin.Context 的调用方标识
	ctxKeySubject = "auth.subject"
)

var errMissingToken = errors.New("missing bearer token")

// jwtAuth 校验 HS256 签名的 Bearer Token
func jwtAuth(secret []byte, log *zap.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(c, errMissingToken)
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(strings.TrimPrefix(header, bearerPrefix), &claims, keyFunc); err != nil {
			log.Debug("Token校验失败", zap.Error(err))
			unauthorized(c, err)
			return
		}

		c.Set(ctxKeySubject, claims.Subject)
		c.Next()
	}
}

func unauthorized(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Header("WWW-Authenticate", `Bearer realm="idgen"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}
