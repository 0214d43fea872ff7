package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"coupon-api/internal/domain"
	"coupon-api/internal/service"
)

func newAuthRouter(registry service.SessionRegistry, role domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protegido", AuthMiddleware(registry, role), func(c *gin.Context) {
		sess, ok := GetAuthSession(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no session in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": sess.PrincipalID})
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidTokenPasses(t *testing.T) {
	registry := service.NewMemorySessionRegistry(30 * time.Minute)
	token, err := registry.Create(domain.RoleCompany, "comp-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	w := doGet(newAuthRouter(registry, domain.RoleCompany), token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"principal":"comp-1"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	registry := service.NewMemorySessionRegistry(30 * time.Minute)

	w := doGet(newAuthRouter(registry, domain.RoleAdmin), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_UnknownToken(t *testing.T) {
	registry := service.NewMemorySessionRegistry(30 * time.Minute)

	w := doGet(newAuthRouter(registry, domain.RoleAdmin), "no-existe")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_WrongRole(t *testing.T) {
	registry := service.NewMemorySessionRegistry(30 * time.Minute)
	token, err := registry.Create(domain.RoleCustomer, "cust-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	w := doGet(newAuthRouter(registry, domain.RoleAdmin), token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on role mismatch, got %d", w.Code)
	}
	// El mismatch expulsa el token: ni con el rol correcto vuelve a entrar.
	w = doGet(newAuthRouter(registry, domain.RoleCustomer), token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after eviction, got %d", w.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	registry := service.NewMemorySessionRegistry(time.Nanosecond)
	token, err := registry.Create(domain.RoleCompany, "comp-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	time.Sleep(time.Millisecond)

	w := doGet(newAuthRouter(registry, domain.RoleCompany), token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}
