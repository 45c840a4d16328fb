package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-habit-engine/internal/core/auth"
	"go-habit-engine/internal/domain"
	"go-habit-engine/internal/service"
	mdw "go-habit-engine/internal/transport/http/middleware"
	"go-habit-engine/pkg/utils"
)

func NewAPIEngine(l *zap.Logger, svc *service.Service, users domain.UserRepository, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 公共接口：注册 + 登录。单独再套一层每 IP 限速，挡撞库
	public := api.Group("")
	public.Use(mdw.RateLimitPerIP(5, 10))
	mountAuthActions(New(public), svc, users, jwter)

	// 用户接口：JWT 或 api-token 头对都认
	authed := api.Group("/user")
	authed.Use(mdw.AuthUser(jwter, users))
	mountUserActions(New(authed), svc)

	return r
}

/* ---------- 注册 / 登录 ---------- */

func mountAuthActions(ez EZ, svc *service.Service, users domain.UserRepository, jwter *auth.JWTer) {
	type registerIn struct {
		Username        string `json:"username" binding:"required,max=64"`
		Email           string `json:"email"    binding:"required,email"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	RegisterAction(ez, Action[registerIn, service.UserView]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (service.UserView, error) {
			if in.Password != in.ConfirmPassword {
				return service.UserView{}, BadRequest(":password and :confirmPassword don't match")
			}
			username := strings.TrimSpace(in.Username)
			existing, err := users.FindByUsername(c.Request.Context(), username)
			if err != nil {
				return service.UserView{}, Internal("lookup failed", err)
			}
			if existing != nil {
				return service.UserView{}, BadRequest("Username already taken")
			}
			now := time.Now()
			u := domain.NewUser(utils.NewID(), utils.NewID(), now)
			u.Username = username
			u.Auth = domain.Auth{
				Local: domain.LocalAuth{
					Username:       username,
					Email:          strings.TrimSpace(in.Email),
					HashedPassword: utils.HashPassword(in.Password),
				},
				Timestamps: domain.AuthTimestamps{Created: now},
			}
			if err := users.Create(c.Request.Context(), u); err != nil {
				return service.UserView{}, Internal("create user failed", err)
			}
			return svc.GetUser(u), nil
		},
	})

	type loginIn struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		ID    string `json:"id"`
		Token string `json:"token"` // api token，给 x-api-key 用
		JWT   string `json:"jwt"`
	}
	RegisterAction(ez, Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/user/auth/local",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := users.FindByUsername(c.Request.Context(), strings.TrimSpace(in.Username))
			if err != nil {
				return loginOut{}, Internal("lookup failed", err)
			}
			if u == nil {
				return loginOut{}, Unauthorized("Username not found")
			}
			if !utils.CheckPassword(in.Password, u.Auth.Local.HashedPassword) {
				return loginOut{}, Unauthorized("Incorrect password")
			}
			u.Auth.Timestamps.LoggedIn = time.Now()
			if err := users.Save(c.Request.Context(), u, domain.NewTouched("auth")); err != nil {
				return loginOut{}, Internal("save login timestamp", err)
			}
			tok, err := jwter.Issue(u.ID, "user")
			if err != nil {
				return loginOut{}, Internal("issue token failed", err)
			}
			return loginOut{ID: u.ID, Token: u.APIToken, JWT: tok}, nil
		},
	})
}

/* ---------- 用户 / 任务操作 ---------- */

func mountUserActions(ez EZ, svc *service.Service) {
	mustUser := func(c *gin.Context) (*domain.User, error) {
		u := mdw.CurrentUser(c)
		if u == nil {
			return nil, Unauthorized("unauthorized")
		}
		return u, nil
	}

	// GET /user
	RegisterAction(ez, Action[struct{}, service.UserView]{
		Method: http.MethodGet, Path: "", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserView, error) {
			u, err := mustUser(c)
			if err != nil {
				return service.UserView{}, err
			}
			return svc.GetUser(u), nil
		},
	})

	// PUT /user 白名单属性合并
	RegisterAction(ez, Action[map[string]any, service.UserView]{
		Method: http.MethodPut, Path: "", Binder: BindJSON,
		Handler: func(c *gin.Context, in *map[string]any) (service.UserView, error) {
			u, err := mustUser(c)
			if err != nil {
				return service.UserView{}, err
			}
			return svc.UpdateUser(c.Request.Context(), u, *in)
		},
	})

	// POST /user/batch
	RegisterAction(ez, Action[[]domain.BatchAction, service.UserView]{
		Method: http.MethodPost, Path: "/batch", Binder: BindJSON,
		Handler: func(c *gin.Context, in *[]domain.BatchAction) (service.UserView, error) {
			u, err := mustUser(c)
			if err != nil {
				return service.UserView{}, err
			}
			return svc.RunBatch(c.Request.Context(), u, *in)
		},
	})

	// POST /user/cron
	RegisterAction(ez, Action[struct{}, service.UserView]{
		Method: http.MethodPost, Path: "/cron", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserView, error) {
			u, err := mustUser(c)
			if err != nil {
				return service.UserView{}, err
			}
			if _, err := svc.RunCron(c.Request.Context(), u); err != nil {
				return service.UserView{}, err
			}
			return svc.GetUser(u), nil
		},
	})

	// POST /user/revive
	RegisterAction(ez, Action[struct{}, service.UserView]{
		Method: http.MethodPost, Path: "/revive", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserView, error) {
			u, err := mustUser(c)
			if err != nil {
				return service.UserView{}, err
			}
			if err := svc.Revive(c.Request.Context(), u); err != nil {
				return service.UserView{}, err
			}
			return svc.GetUser(u), nil
		},
	})

	// POST /user/buy/:type
	RegisterAction(ez, Action[struct{}, domain.Items]{
		Method: http.MethodPost, Path: "/buy/:type", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Items, error) {
			u, err := mustUser(c)
			if err != nil {
				return domain.Items{}, err
			}
			items, err := svc.Buy(c.Request.Context(), u, c.Param("type"))
			if err != nil {
				return domain.Items{}, err
			}
			return *items, nil
		},
	})

	// GET /user/tasks?type=habit
	RegisterAction(ez, Action[struct{}, []*domain.Task]{
		Method: http.MethodGet, Path: "/tasks", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]*domain.Task, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			return svc.ListTasks(u, c.Query("type")), nil
		},
	})

	// POST /user/tasks
	RegisterAction(ez, Action[service.TaskInput, *domain.Task]{
		Method: http.MethodPost, Path: "/tasks", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.TaskInput) (*domain.Task, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			return svc.CreateTask(c.Request.Context(), u, in)
		},
	})

	// GET /user/tasks/:id
	RegisterAction(ez, Action[struct{}, *domain.Task]{
		Method: http.MethodGet, Path: "/tasks/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Task, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			return svc.GetTask(u, c.Param("id"))
		},
	})

	// PUT /user/tasks/:id
	RegisterAction(ez, Action[service.TaskInput, *domain.Task]{
		Method: http.MethodPut, Path: "/tasks/:id", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.TaskInput) (*domain.Task, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			return svc.UpdateTask(c.Request.Context(), u, c.Param("id"), in)
		},
	})

	// DELETE /user/tasks/:id
	RegisterAction(ez, Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/tasks/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			if err := svc.DeleteTask(c.Request.Context(), u, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})

	// POST /user/tasks/:id/score/:direction
	RegisterAction(ez, Action[service.TaskInput, *service.ScoreResult]{
		Method: http.MethodPost, Path: "/tasks/:id/score/:direction", Binder: BindNone,
		Handler: func(c *gin.Context, in *service.TaskInput) (*service.ScoreResult, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			// body 可缺省（裸 up/down 打点），能解析就带上
			_ = c.ShouldBindJSON(in)
			dir := domain.Direction(c.Param("direction"))
			return svc.ScoreTask(c.Request.Context(), u, c.Param("id"), dir, in)
		},
	})

	// POST /user/tasks/:id/sort
	RegisterAction(ez, Action[service.TaskInput, gin.H]{
		Method: http.MethodPost, Path: "/tasks/:id/sort", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.TaskInput) (gin.H, error) {
			u, err := mustUser(c)
			if err != nil {
				return nil, err
			}
			if err := svc.SortTask(c.Request.Context(), u, in); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})
}
