package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coupon-api/internal/domain"
	"coupon-api/internal/service"
)

const authSessionKey = "auth_session"

// AuthMiddleware valida el token de sesion contra el registro y exige el
// rol del grupo de rutas. Corre antes de cualquier handler del grupo; un
// token invalido, vencido o de otro rol corta el request con 401 y la
// validacion misma ya expulso el token del registro. En un request
// autorizado se reinicia el reloj de inactividad.
func AuthMiddleware(registry service.SessionRegistry, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		sess, err := registry.Validate(token, role)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		registry.Touch(token)

		c.Set(authSessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// GetAuthSession obtiene la sesion autenticada desde el contexto.
func GetAuthSession(c *gin.Context) (service.Session, bool) {
	val, ok := c.Get(authSessionKey)
	if !ok {
		return service.Session{}, false
	}
	sess, ok := val.(service.Session)
	return sess, ok
}
