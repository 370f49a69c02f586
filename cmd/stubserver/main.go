package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pastoreohq/go-pastoreo/internal/families"
	"github.com/pastoreohq/go-pastoreo/internal/followups"
	"github.com/pastoreohq/go-pastoreo/internal/groups"
	"github.com/pastoreohq/go-pastoreo/internal/members"
	"github.com/pastoreohq/go-pastoreo/internal/stub"
	"github.com/pastoreohq/go-pastoreo/pkg/config"
	"github.com/pastoreohq/go-pastoreo/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	srv := stub.New(stub.Options{
		JWTSecret:   cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiry(),
		Logger:      logger,
	})
	seed(srv)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("stub backend listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down stub backend...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("stub backend stopped")
}

// seed fills the stub with enough data to walk every CLI command.
func seed(srv *stub.Server) {
	srv.SeedUser("pastor@ejemplo.org", "secreto123", "Pedro Pastor", "iglesia-central", false)
	srv.SeedUser("admin@pastoreo.app", "admin123", "Ana Admin", "", true)

	srv.SeedFollowUp(followups.Person{
		FirstName: "María",
		LastName:  "García",
		Email:     "maria@example.com",
		Status:    followups.StatusVisitor,
	})
	visitante := srv.SeedFollowUp(followups.Person{
		FirstName: "Juan",
		LastName:  "Pérez",
		Phone:     "+52 55 0000 0000",
		Status:    followups.StatusProspect,
	})
	srv.SeedNote(visitante.ID, followups.Note{
		Type: followups.NotePastoral,
		Text: "Primera visita, pedir oración por su familia",
	})

	ana := srv.SeedMember(members.Member{
		Person: members.PersonName{FirstName: "Ana", LastName: "López"},
	}, 0)
	srv.SeedMember(members.Member{
		Person:           members.PersonName{FirstName: "Carlos", LastName: "Ruiz"},
		MembershipStatus: members.StatusArchived,
	}, 0)

	srv.SeedFamily(families.Family{Name: "Familia López", MemberCount: 3})

	srv.SeedGroup(groups.Group{
		Name:        "Jóvenes",
		Description: "Grupo de jóvenes, viernes 19h",
		Members: []groups.GroupMember{
			{ID: ana.ID, Person: ana.Person},
		},
	})
}
