// Package httpapi exposes the chat REST API over gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// ChatService is the transcript API the handlers depend on.
type ChatService interface {
	Create(ctx context.Context, userID, text string) (string, error)
	Get(ctx context.Context, userID, id string) (*models.Chat, error)
	AppendTurns(ctx context.Context, userID, id string, req services.AppendRequest) (*models.UpdateResult, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]models.ChatIndexEntry, error)
}

// UploadSigner issues presigned upload parameters.
type UploadSigner interface {
	Sign(ctx context.Context) (*services.UploadParams, error)
}

type HTTPServer struct {
	address   string
	chats     ChatService
	uploads   UploadSigner
	logger    logging.Logger
	jwtSecret []byte
	clientURL string
	router    *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, cs ChatService, us UploadSigner, secretKey, clientURL string) *HTTPServer {
	s := &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		chats:     cs,
		uploads:   us,
		jwtSecret: []byte(secretKey),
		clientURL: clientURL,
	}
	s.router = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), s.cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/upload", s.uploadParams)

		authed := api.Group("", s.requireAuth())
		authed.POST("/chats", s.createChat)
		authed.GET("/chats/:id", s.getChat)
		authed.PUT("/chats/:id", s.appendTurns)
		authed.DELETE("/chats/:id", s.deleteChat)
		authed.GET("/userchats", s.listChats)
	}

	return router
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Shutdown drains in-flight requests after Serve has returned.
	<-stopped

	return nil
}
