package stubserver

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aqua_chat_client/internal/infrastructure/logger"
)

// Server bundles the gin engine and the in-memory store.
type Server struct {
	engine *gin.Engine
	store  *Store
}

// New builds the stub server around store, with zap request logging,
// panic recovery and permissive CORS (the browser front end is the
// other consumer of this API during development).
func New(store *Store) (*Server, error) {
	if err := initTrans(); err != nil {
		return nil, fmt.Errorf("init validator translations: %w", err)
	}

	engine := gin.New()
	engine.Use(logger.GinLogger(), logger.GinRecovery(true))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	s := &Server{engine: engine, store: store}
	s.registerRoutes()
	return s, nil
}

// registerRoutes wires the REST contract consumed by the client.
func (s *Server) registerRoutes() {
	// public
	s.engine.POST("/login", s.Login)

	// authenticated
	authed := s.engine.Group("/")
	authed.Use(jwtAuth())
	{
		authed.GET("/users", s.ListUsers)
		authed.GET("/users/search", s.SearchUsers)
		authed.GET("/users/:id", s.GetUser)

		authed.GET("/messages", s.ListMessages)
		authed.POST("/messages", s.SendMessage)
		authed.POST("/messages/markRead", s.MarkRead)
		authed.GET("/messages/unseen", s.Unseen)
	}
}

// Engine exposes the router, mainly for httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the process exits.
func (s *Server) Run(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	zap.L().Info("stub server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}
