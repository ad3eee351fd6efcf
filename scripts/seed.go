package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/database"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/search"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/postgres"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/typesense"
	"github.com/crossroads-hq/crossroads-backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	var searchRepo *search.TypesenseAdapter
	if err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		searchRepo.InitSchema(context.Background())
	}

	userRepo := database.NewUserAdapter(pgClient)
	businessRepo := database.NewBusinessAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)
	subscriptionRepo := database.NewSubscriptionAdapter(pgClient)
	postRepo := database.NewPostAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				business_owner_posts,
				user_business_subscriptions,
				reviews,
				businesses,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()

	// 1. Seed Users (one admin, two owners, two customers)
	users := []entities.User{
		{ID: "seed-admin-sub", ProfileOwner: entities.ComposeOwnerKey("marta", "seed-admin-sub"), Username: "marta", GroupName: entities.GroupAdmins, FirstName: "Marta", LastName: "Reyes", Birthdate: "1985-03-12", CreatedAt: now, UpdatedAt: now},
		{ID: "seed-owner-1", ProfileOwner: entities.ComposeOwnerKey("deshawn", "seed-owner-1"), Username: "deshawn", GroupName: entities.GroupOwners, FirstName: "DeShawn", LastName: "Carter", Birthdate: "1990-07-22", CreatedAt: now, UpdatedAt: now},
		{ID: "seed-owner-2", ProfileOwner: entities.ComposeOwnerKey("priya", "seed-owner-2"), Username: "priya", GroupName: entities.GroupOwners, FirstName: "Priya", LastName: "Nair", Birthdate: "1988-11-03", CreatedAt: now, UpdatedAt: now},
		{ID: "seed-cust-1", ProfileOwner: entities.ComposeOwnerKey("jordan", "seed-cust-1"), Username: "jordan", GroupName: entities.GroupCustomers, FirstName: "Jordan", LastName: "Lee", Birthdate: "1995-01-30", CreatedAt: now, UpdatedAt: now},
		{ID: "seed-cust-2", ProfileOwner: entities.ComposeOwnerKey("amara", "seed-cust-2"), Username: "amara", GroupName: entities.GroupCustomers, FirstName: "Amara", LastName: "Okafor", Birthdate: "1998-09-14", CreatedAt: now, UpdatedAt: now},
	}

	for _, u := range users {
		if err := userRepo.Create(ctx, &u); err != nil {
			log.Printf("Failed to create user %s: %v", u.Username, err)
		}
	}

	// 2. Seed Businesses across the moderation states
	businesses := []entities.Business{
		{
			ID:     uuid.New().String(),
			Name:   "Southside Smokehouse",
			UserID: entities.ComposeOwnerKey("deshawn", "seed-owner-1"),
			Description: "Slow-smoked brisket and ribs, family recipes since 1987.",
			Categories:  []string{"Restaurant", "Barbecue"},
			Location: entities.BusinessLocation{
				StreetAddress: "412 Auburn Ave", City: "Atlanta", State: "GA", Zip: "30312",
			},
			Phone:           "404-555-0134",
			Website:         "https://southsidesmokehouse.example",
			Email:           "pit@southsidesmokehouse.example",
			Hours:           "Tue-Sun 11am-9pm",
			IsMinorityOwned: true,
			Status:          entities.BusinessStatusVerified,
			AverageRating:   4.5,
			NumberOfRatings: 2,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:     uuid.New().String(),
			Name:   "Velvet Bean Cafe",
			UserID: entities.ComposeOwnerKey("priya", "seed-owner-2"),
			Description: "Single-origin espresso, chai, and fresh pastries.",
			Categories:  []string{"Cafe"},
			Location: entities.BusinessLocation{
				StreetAddress: "88 Peachtree St", City: "Atlanta", State: "GA", Zip: "30303",
			},
			Phone:           "404-555-0177",
			Hours:           "Daily 7am-5pm",
			IsMinorityOwned: true,
			Status:          entities.BusinessStatusVerified,
			AverageRating:   5,
			NumberOfRatings: 1,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:     uuid.New().String(),
			Name:   "Carter's Auto Shop",
			UserID: entities.ComposeOwnerKey("deshawn", "seed-owner-1"),
			Description: "Brakes, oil changes, and diagnostics while you wait.",
			Categories:  []string{"Auto Shop"},
			Location: entities.BusinessLocation{
				StreetAddress: "1501 Memorial Dr", City: "Decatur", State: "GA", Zip: "30032",
			},
			Phone:     "404-555-0102",
			Hours:     "Mon-Fri 8am-6pm",
			Status:    entities.BusinessStatusPendingReview,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:     uuid.New().String(),
			Name:   "Corner Pop-Up",
			UserID: entities.ComposeOwnerKey("priya", "seed-owner-2"),
			Description: "Rotating weekend vendors.",
			Categories:  []string{"Market"},
			Location: entities.BusinessLocation{
				StreetAddress: "640 North Ave", City: "Atlanta", State: "GA",
			},
			Status:    entities.BusinessStatusFlagged,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for i := range businesses {
		b := businesses[i]
		if err := businessRepo.Create(ctx, &b); err != nil {
			log.Printf("Failed to create business %s: %v", b.Name, err)
			continue
		}
		if searchRepo != nil {
			if err := searchRepo.Index(ctx, &b); err != nil {
				log.Printf("Failed to index business %s: %v", b.Name, err)
			}
		}
	}

	// 3. Seed Reviews for the verified listings
	reviews := []entities.Review{
		{ID: uuid.New().String(), BusinessID: businesses[0].ID, UserID: "seed-cust-1", Rating: 5, Text: "Best brisket in the city, no contest.", IsPublic: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), BusinessID: businesses[0].ID, UserID: "seed-cust-2", Rating: 4, Text: "Great ribs, long wait on Saturdays.", IsPublic: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), BusinessID: businesses[1].ID, UserID: "seed-cust-1", Rating: 5, Text: "The cardamom chai is perfect.", IsPublic: true, CreatedAt: now, UpdatedAt: now},
	}

	for _, r := range reviews {
		if err := reviewRepo.Create(ctx, &r); err != nil {
			log.Printf("Failed to create review for %s: %v", r.BusinessID, err)
		}
	}

	// 4. Seed Subscriptions
	subscriptions := []entities.UserBusinessSubscription{
		{UserID: "seed-cust-1", BusinessID: businesses[0].ID, SubscribedAt: now},
		{UserID: "seed-cust-2", BusinessID: businesses[0].ID, SubscribedAt: now},
		{UserID: "seed-cust-1", BusinessID: businesses[1].ID, SubscribedAt: now},
	}

	for _, s := range subscriptions {
		if err := subscriptionRepo.Create(ctx, &s); err != nil {
			log.Printf("Failed to create subscription %s -> %s: %v", s.UserID, s.BusinessID, err)
		}
	}

	// 5. Seed Owner Posts
	posts := []entities.BusinessOwnerPost{
		{ID: uuid.New().String(), UserID: "seed-owner-1", BusinessID: businesses[0].ID, Content: "Smoked turkey special all weekend.", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), UserID: "seed-owner-2", BusinessID: businesses[1].ID, Content: "New Ethiopian single-origin on the bar today.", CreatedAt: now, UpdatedAt: now},
	}

	for _, p := range posts {
		if err := postRepo.Create(ctx, &p); err != nil {
			log.Printf("Failed to create post for %s: %v", p.BusinessID, err)
		}
	}

	log.Println("Seeding completed successfully")
}
