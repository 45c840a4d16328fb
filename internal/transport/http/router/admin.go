package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-habit-engine/internal/core/auth"
	"go-habit-engine/internal/domain"
	"go-habit-engine/internal/service"
	mdw "go-habit-engine/internal/transport/http/middleware"
)

// NewAdminEngine 运维控制台：用户列表 / 封禁 / 手动触发滚动
func NewAdminEngine(l *zap.Logger, svc *service.Service, users domain.UserRepository, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(50, 100),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))
	mountAdminActions(New(admin), svc, users)

	return r
}

func mountAdminActions(ez EZ, svc *service.Service, users domain.UserRepository) {
	type listQ struct {
		Offset int `form:"offset,default=0"`
		Limit  int `form:"limit,default=20"`
	}
	type row struct {
		ID       string    `json:"id"`
		Username string    `json:"username"`
		Lvl      int       `json:"lvl"`
		HP       float64   `json:"hp"`
		LastCron time.Time `json:"lastCron"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	RegisterAction(ez, Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := users.List(c.Request.Context(), in.Offset, in.Limit)
			if err != nil {
				return listOut{}, Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Username: u.Username,
					Lvl: u.Stats.Lvl, HP: u.Stats.HP, LastCron: u.LastCron,
				})
			}
			return out, nil
		},
	})

	// 封禁 = 软删
	RegisterAction(ez, Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, BadRequest("missing id")
			}
			if err := users.SoftDelete(c.Request.Context(), id); err != nil {
				return nil, Internal("ban user failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})

	// 手动触发一次每日滚动（排障用）
	RegisterAction(ez, Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/cron",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			u, err := users.FindByID(c.Request.Context(), id)
			if err != nil {
				return nil, Internal("lookup failed", err)
			}
			if u == nil {
				return nil, NotFound("user not found")
			}
			ran, err := svc.RunCron(c.Request.Context(), u)
			if err != nil {
				return nil, Internal("cron failed", err)
			}
			return gin.H{"id": id, "ran": ran}, nil
		},
	})
}
