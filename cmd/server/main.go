// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tolaria/playtable/internal/auth"
	"github.com/tolaria/playtable/internal/cache"
	"github.com/tolaria/playtable/internal/database"
	"github.com/tolaria/playtable/internal/handlers"
	"github.com/tolaria/playtable/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Action history is best-effort: the server runs fine without the
	// historian queue.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable, action history disabled: %v", err)
	}

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)

	// deck endpoints
	mux.Handle("/decks", middleware.LogMiddleware(logger)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				handlers.CreateDeckHandler(w, r)
			default:
				handlers.ListDecksHandler(w, r)
			}
		},
	)))
	mux.Handle("/decks/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GetDeckHandler,
	)))

	// game websocket and lobby browser
	srv := handlers.NewGameServer()

	mux.Handle("/game/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))
	mux.Handle("/games", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListGamesHandler(srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
