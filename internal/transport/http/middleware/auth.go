package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-habit-engine/internal/core/auth"
	"go-habit-engine/internal/domain"
	resp "go-habit-engine/internal/transport/http/response"
)

const (
	// 移动端/第三方沿用的老鉴权头
	HeaderAPIUser = "x-api-user"
	HeaderAPIKey  = "x-api-key"

	ctxUserKey = "user"
)

// AuthUser 两种鉴权并存：Bearer JWT，或 x-api-user/x-api-key 头对。
// 通过后把用户聚合挂到上下文，后面的处理器不再查库。
func AuthUser(j *auth.JWTer, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ""
		if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
				return
			}
			uid = claims.UID
			c.Set("role", claims.Role)
		}

		if uid != "" {
			u, err := users.FindByID(c.Request.Context(), uid)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, err.Error()))
				return
			}
			if u == nil {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "No user found."))
				return
			}
			bind(c, u)
			return
		}

		apiUser := c.GetHeader(HeaderAPIUser)
		apiKey := c.GetHeader(HeaderAPIKey)
		if apiUser == "" || apiKey == "" {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized,
				"You must include a token and uid (user id) in your request"))
			return
		}
		u, err := users.FindByToken(c.Request.Context(), apiUser, apiKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, err.Error()))
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "No user found."))
			return
		}
		bind(c, u)
	}
}

func bind(c *gin.Context, u *domain.User) {
	c.Set(ctxUserKey, u)
	c.Set("userId", u.ID)
	c.Next()
}

// CurrentUser 取出 AuthUser 挂上来的聚合
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthJWT 管理端只走 JWT，并要求角色
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
