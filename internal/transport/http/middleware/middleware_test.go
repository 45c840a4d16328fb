package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-habit-engine/internal/core/auth"
	resp "go-habit-engine/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(KeyRequestID) == "" {
		t.Fatalf("response should carry a generated request id")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "given")
	r.ServeHTTP(w, req)
	if w.Header().Get(KeyRequestID) != "given" {
		t.Fatalf("client-supplied request id should pass through, got %q", w.Header().Get(KeyRequestID))
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(1, 2))
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		var body resp.Resp
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		codes = append(codes, body.Code)
	}
	if codes[0] != resp.CodeOK || codes[1] != resp.CodeOK {
		t.Fatalf("burst of 2 should pass, codes = %v", codes)
	}
	if codes[2] == resp.CodeOK {
		t.Fatalf("third request should be limited, codes = %v", codes)
	}
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "t", TTL: time.Minute}

	r := gin.New()
	r.Use(AuthJWT(j, "admin"))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(gin.H{"uid": c.GetString("userId")}))
	})

	do := func(authz string) resp.Resp {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		r.ServeHTTP(w, req)
		var body resp.Resp
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return body
	}

	if body := do(""); body.Code != resp.CodeUnauthorized {
		t.Fatalf("missing token: code = %d", body.Code)
	}
	if body := do("Bearer garbage"); body.Code != resp.CodeUnauthorized {
		t.Fatalf("bad token: code = %d", body.Code)
	}

	userTok, err := j.Issue("u1", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if body := do("Bearer " + userTok); body.Code != resp.CodeForbidden {
		t.Fatalf("wrong role: code = %d", body.Code)
	}

	adminTok, _ := j.Issue("a1", "admin")
	if body := do("Bearer " + adminTok); body.Code != resp.CodeOK {
		t.Fatalf("admin token rejected: %+v", body)
	}
}
