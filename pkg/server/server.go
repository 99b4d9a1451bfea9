// Package server exposes the board's REST API. The local client and the
// remote store speak the same shapes, so a board pointed at this server
// behaves exactly like one running on local storage.
package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"monodo/pkg/database"
	"monodo/pkg/task"
)

// Server wires the HTTP routes onto the SQL-backed store.
type Server struct {
	store  *database.Store
	secret []byte
	logger *slog.Logger
	router *gin.Engine
}

// NewServer builds the router. Every /api route except the session probe
// requires a valid bearer token.
func NewServer(store *database.Store, secret string, logger *slog.Logger) *Server {
	router := gin.Default()

	s := &Server{
		store:  store,
		secret: []byte(secret),
		logger: logger,
		router: router,
	}

	api := router.Group("/api")
	api.Use(s.requireAuth)
	{
		api.GET("/session/check", s.handleSessionCheck)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.PATCH("/tasks/:id/status", s.handleUpdateTaskStatus)

		api.GET("/categories", s.handleListCategories)
		api.POST("/categories", s.handleCreateCategory)
		api.PUT("/categories/:id", s.handleUpdateCategory)
		api.DELETE("/categories/:id", s.handleDeleteCategory)
	}

	return s
}

// Run starts the web server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// GenerateToken issues an HS256 bearer token for the given user. The role
// claim gates the privileged status transitions.
func GenerateToken(secret, userID string, role task.Role, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// requireAuth validates the bearer token and stashes the caller's identity
// on the request context.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
		return
	}

	role := task.RoleUser
	if r, _ := claims["role"].(string); r != "" {
		role = task.Role(r)
	}

	c.Set("userID", sub)
	c.Set("role", role)
	c.Next()
}

func userID(c *gin.Context) string {
	return c.GetString("userID")
}

func callerRole(c *gin.Context) task.Role {
	if v, ok := c.Get("role"); ok {
		if r, ok := v.(task.Role); ok {
			return r
		}
	}
	return task.RoleUser
}
