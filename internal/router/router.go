package router

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"lendbook/internal/handlers"
	"lendbook/internal/middleware"
	"lendbook/internal/notifier"
	"lendbook/internal/realtime"
	"lendbook/internal/services"
	"lendbook/internal/store"
)

// SetupRouter wires stores, services and handlers onto the HTTP surface.
func SetupRouter(db *sql.DB, events notifier.Notifier, tracker *realtime.PresenceTracker, logger zerolog.Logger) *mux.Router {
	runner := store.NewSQLRunner(db)
	ledgerStore := store.NewMySQLLedgerStore(db)
	userStore := store.NewMySQLUserStore(db)
	friendStore := store.NewMySQLFriendStore(db)

	transactionService := services.NewTransactionService(runner, ledgerStore, userStore, events, logger)
	userService := services.NewUserService(userStore, friendStore, tracker, logger)
	authService := services.NewAuthService(logger)

	transactionHandler := handlers.NewTransactionHandler(transactionService, logger)
	authHandler := handlers.NewAuthHandler(userService, authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	presenceHandler := handlers.NewPresenceHandler(tracker, userService, events, logger)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		logger.Warn().Msg("JWT_SECRET not set, using default key")
	}

	r := mux.NewRouter()

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestValidation())

	rateLimiter := middleware.NewRateLimiter(rate.Limit(10), 20)
	r.Use(rateLimiter.Middleware())

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(middleware.Authentication(jwtSecret, logger))
	authProtected.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")

	users := api.PathPrefix("/users").Subrouter()
	users.Use(middleware.Authentication(jwtSecret, logger))
	users.HandleFunc("/me", userHandler.Me).Methods("GET")
	users.HandleFunc("/{id}", userHandler.Get).Methods("GET")

	friends := api.PathPrefix("/friends").Subrouter()
	friends.Use(middleware.Authentication(jwtSecret, logger))
	friends.HandleFunc("", userHandler.ListFriends).Methods("GET")
	friends.HandleFunc("/online", userHandler.OnlineFriends).Methods("GET")
	friends.HandleFunc("/{id}", userHandler.AddFriend).Methods("POST")
	friends.HandleFunc("/{id}", userHandler.RemoveFriend).Methods("DELETE")

	transactions := api.PathPrefix("/transactions").Subrouter()
	transactions.Use(middleware.Authentication(jwtSecret, logger))
	transactions.HandleFunc("", transactionHandler.Create).Methods("POST")
	transactions.HandleFunc("", transactionHandler.List).Methods("GET")
	transactions.HandleFunc("/pending", transactionHandler.ListPending).Methods("GET")
	transactions.HandleFunc("/between/{userId}", transactionHandler.ListBetween).Methods("GET")
	transactions.HandleFunc("/settle/{counterpartyId}", transactionHandler.Settle).Methods("POST")
	transactions.HandleFunc("/{id}", transactionHandler.Get).Methods("GET")
	transactions.HandleFunc("/{id}", transactionHandler.Delete).Methods("DELETE")
	transactions.HandleFunc("/{id}/accept", transactionHandler.Accept).Methods("PATCH")
	transactions.HandleFunc("/{id}/reject", transactionHandler.Reject).Methods("PATCH")
	transactions.HandleFunc("/{id}/status", transactionHandler.UpdateStatus).Methods("PATCH")

	presence := api.PathPrefix("/presence").Subrouter()
	presence.Use(middleware.Authentication(jwtSecret, logger))
	presence.HandleFunc("/connect", presenceHandler.Connect).Methods("POST")
	presence.HandleFunc("/disconnect", presenceHandler.Disconnect).Methods("POST")
	presence.HandleFunc("/online", presenceHandler.Online).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")

	return r
}
