//go:build ignore

// Seeds a running backend with sample follow-up data through the public API.
// Run the stub server first, then: go run scripts/seed.go
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/followups"
	"github.com/pastoreohq/go-pastoreo/internal/session"
	"github.com/pastoreohq/go-pastoreo/pkg/config"
	"github.com/pastoreohq/go-pastoreo/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	sessions := session.NewStore(session.NewMemoryStorage(), session.NavigatorFunc(func(string) {}), logger)
	client := api.NewClient(cfg.API.BaseURL, sessions, cfg.API.Timeout(), logger)

	ctx := context.Background()
	result, err := client.Login(ctx, api.LoginInput{
		Email:    "pastor@ejemplo.org",
		Password: "secreto123",
	})
	if err != nil {
		log.Fatalf("failed to log in: %v", err)
	}
	sessions.Login(result.AccessToken, session.User{ID: result.User.ID, DisplayName: result.User.FullName}, result.ChurchID)

	store := followups.NewListStore(client, logger, followups.Filters{})
	defer store.Close()

	people := []followups.PersonInput{
		{FirstName: "Lucía", LastName: "Moreno", Email: "lucia@ejemplo.org", Status: followups.StatusVisitor},
		{FirstName: "Pedro", LastName: "Sánchez", Phone: "+34 600 111 222", Status: followups.StatusVisitor},
		{FirstName: "Elena", LastName: "Torres", Status: followups.StatusProspect},
	}
	for _, p := range people {
		if err := store.Create(ctx, p); err != nil {
			log.Fatalf("failed to create follow-up %s %s: %v", p.FirstName, p.LastName, err)
		}
		fmt.Printf("created follow-up %s %s\n", p.FirstName, p.LastName)
	}

	fmt.Printf("done, %d follow-ups in the list\n", store.State().Meta.Total)
}
