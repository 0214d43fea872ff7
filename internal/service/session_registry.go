package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"coupon-api/internal/domain"
)

// DefaultSessionTTL es el timeout de inactividad: cada request autorizado
// reinicia el reloj.
const DefaultSessionTTL = 30 * time.Minute

// Session es el principal autenticado detras de un token vivo.
type Session struct {
	Token        string      `json:"token"`
	Role         domain.Role `json:"role"`
	PrincipalID  string      `json:"principal_id"`
	LastActivity time.Time   `json:"last_activity"`
}

// SessionRegistry mapea tokens opacos a sesiones y es el unico dueno de
// su ciclo de vida.
type SessionRegistry interface {
	// Create genera un token unico entre sesiones vivas y lo registra.
	Create(role domain.Role, principalID string) (string, error)
	// Validate resuelve el token y exige el rol dado. Tokens vencidos o
	// con rol equivocado se expulsan del registro en la misma llamada.
	Validate(token string, requiredRole domain.Role) (Session, error)
	// Touch reinicia el reloj de inactividad; silencioso si el token no existe.
	Touch(token string)
	// Destroy elimina el token; idempotente.
	Destroy(token string)
}

type memorySession struct {
	role         domain.Role
	principalID  string
	lastActivity time.Time
}

// MemorySessionRegistry implementa SessionRegistry sobre un map protegido
// por mutex.
type MemorySessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRegistry(ttl time.Duration) *MemorySessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionRegistry{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemorySessionRegistry) Create(role domain.Role, principalID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := uuid.NewString()
	for {
		if _, taken := r.sessions[token]; !taken {
			break
		}
		token = uuid.NewString()
	}
	r.sessions[token] = memorySession{
		role:         role,
		principalID:  principalID,
		lastActivity: r.now().UTC(),
	}
	return token, nil
}

func (r *MemorySessionRegistry) Validate(token string, requiredRole domain.Role) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrTokenNotFound
	}
	if r.now().UTC().Sub(sess.lastActivity) >= r.ttl {
		delete(r.sessions, token)
		return Session{}, ErrTokenExpired
	}
	if sess.role != requiredRole {
		delete(r.sessions, token)
		return Session{}, ErrRoleMismatch
	}
	return Session{
		Token:        token,
		Role:         sess.role,
		PrincipalID:  sess.principalID,
		LastActivity: sess.lastActivity,
	}, nil
}

func (r *MemorySessionRegistry) Touch(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[token]
	if !ok {
		return
	}
	sess.lastActivity = r.now().UTC()
	r.sessions[token] = sess
}

func (r *MemorySessionRegistry) Destroy(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Len devuelve la cantidad de sesiones vivas registradas.
func (r *MemorySessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
