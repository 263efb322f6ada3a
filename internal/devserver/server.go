// Package devserver is an in-memory stand-in for the platform API so
// the CLI can be exercised without the real backend. It implements the
// auth endpoints and the trainer/client groups with the same error
// body shape the production servers use. Nothing survives a restart.
package devserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ctxUserID = "userID"

type Server struct {
	httpServer *http.Server
	store      *memoryStore
	issuer     *tokenIssuer
	log        *zap.SugaredLogger
}

func New(addr, tokenSecret string, tokenTTL time.Duration, log *zap.SugaredLogger) *Server {
	s := &Server{
		store:  newMemoryStore(),
		issuer: newTokenIssuer(tokenSecret, tokenTTL),
		log:    log,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	return s
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public routes
	// ----------------------------

	auth := router.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)
	auth.POST("/forgot-password", s.forgotPassword)
	auth.POST("/apple/precheck", s.applePrecheck)
	auth.POST("/apple/callback", s.appleCallback)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected routes
	// ----------------------------

	trainer := router.Group("/trainer")
	trainer.Use(s.requireAuth())
	trainer.GET("/exercises", s.listExercises)
	trainer.POST("/exercises", s.createExercise)
	trainer.PUT("/exercises/:id", s.updateExercise)
	trainer.DELETE("/exercises/:id", s.deleteExercise)
	trainer.GET("/clients", s.listClients)
	trainer.POST("/clients/:id/assignments", s.assignWorkout)

	client := router.Group("/client")
	client.Use(s.requireAuth())
	client.GET("/assignments", s.listAssignments)
	client.POST("/progress", s.logProgress)
	client.GET("/progress", s.listProgress)

	return router
}

// requireAuth enforces the bearer header on the role-scoped groups and
// attaches the token's subject for the handlers.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := s.issuer.verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		s.store.mu.Lock()
		_, exists := s.store.accounts[userID]
		s.store.mu.Unlock()
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
