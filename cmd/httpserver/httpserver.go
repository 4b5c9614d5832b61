// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/card-bank/internal/accountdelivery"
	"github.com/go-petr/card-bank/internal/accountrepo"
	"github.com/go-petr/card-bank/internal/accountservice"
	"github.com/go-petr/card-bank/internal/middleware"
	"github.com/go-petr/card-bank/internal/transactiondelivery"
	"github.com/go-petr/card-bank/internal/transactionrepo"
	"github.com/go-petr/card-bank/internal/transactionservice"
	"github.com/go-petr/card-bank/internal/userdelivery"
	"github.com/go-petr/card-bank/internal/userrepo"
	"github.com/go-petr/card-bank/internal/userservice"
	"github.com/go-petr/card-bank/pkg/configpkg"
	"github.com/go-petr/card-bank/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

func newTokenMaker(config configpkg.Config) (tokenpkg.Maker, error) {
	switch config.TokenMaker {
	case "jwt":
		return tokenpkg.NewJWTMaker(config.TokenSymmetricKey)
	default:
		return tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	}
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	tokenMaker, err := newTokenMaker(config)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo, userRepo)
	transactionService := transactionservice.New(transactionRepo, accountRepo)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	if config.Environement != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	// Card movements authenticate with the card credentials themselves.
	engine.POST("/transactions/deposit", transactionHandler.Deposit)
	engine.POST("/transactions/withdraw", transactionHandler.Withdraw)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/users/me", userHandler.Me)
	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/transactions", transactionHandler.List)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
