package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/features/advisory"
	"inteldesk/internal/features/client"
	"inteldesk/internal/features/user"
	"inteldesk/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.DBName)
	now := time.Now().UTC()

	// 1. Super admin account
	userCol := db.Collection("users")
	if count, _ := userCol.CountDocuments(ctx, bson.M{"email": "admin@inteldesk.local"}); count == 0 {
		hash, err := utils.HashPassword("ChangeMe123!")
		if err != nil {
			log.Fatal(err)
		}
		_, err = userCol.InsertOne(ctx, user.User{
			ID:           primitive.NewObjectID(),
			Email:        "admin@inteldesk.local",
			Name:         "Administrator",
			PasswordHash: hash,
			Role:         common_models.RoleSuperAdmin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("Created super admin: admin@inteldesk.local")
	} else {
		fmt.Println("Super admin already exists")
	}

	// 2. Demo clients
	clientCol := db.Collection("clients")
	clients := []client.Client{
		{
			ClientID:  "acme-bank",
			Name:      "Acme Bank",
			Emails:    []string{"soc@acmebank.example", "ciso@acmebank.example"},
			CcEmails:  []string{"it-ops@acmebank.example"},
			FwIndex:   "FW-001",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ClientID:  "globex-health",
			Name:      "Globex Health",
			Emails:    []string{"security@globexhealth.example"},
			BccEmails: []string{"audit@globexhealth.example"},
			FwIndex:   "FW-002",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, c := range clients {
		if count, _ := clientCol.CountDocuments(ctx, bson.M{"client_id": c.ClientID}); count == 0 {
			c.ID = primitive.NewObjectID()
			if _, err := clientCol.InsertOne(ctx, c); err != nil {
				log.Printf("Failed to create client %s: %v", c.ClientID, err)
			} else {
				fmt.Printf("Created client: %s\n", c.ClientID)
			}
		} else {
			fmt.Printf("Client %s already exists\n", c.ClientID)
		}
	}

	// 3. Sample advisory so scheduling works out of the box
	advCol := db.Collection("advisories")
	title := "Critical RCE in ExampleCMS Plugin Framework"
	if count, _ := advCol.CountDocuments(ctx, bson.M{"title": title}); count == 0 {
		published := now.AddDate(0, 0, -1)
		_, err := advCol.InsertOne(ctx, advisory.Advisory{
			ID:               primitive.NewObjectID(),
			Title:            title,
			Severity:         "Critical",
			TLP:              "amber",
			ExecutiveSummary: "A remote code execution flaw in the ExampleCMS plugin framework is being exploited in the wild.",
			Description:      "Unauthenticated attackers can upload arbitrary PHP through the plugin update endpoint.",
			CveIDs:           []string{"CVE-2026-12345"},
			IOCs: []advisory.IOC{
				{Type: "IP", Value: "198.51.100.23"},
				{Type: "Hash", Value: "d41d8cd98f00b204e9800998ecf8427e"},
			},
			Recommendations:  []string{"Upgrade to ExampleCMS 4.2.1 or later", "Block the listed IPs at the perimeter"},
			References:       []string{"https://example.com/advisories/examplecms-rce"},
			AffectedProducts: []string{"ExampleCMS 4.x"},
			TargetSectors:    []string{"Finance", "Healthcare"},
			PublishedDate:    &published,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("Created sample advisory")
	} else {
		fmt.Println("Sample advisory already exists")
	}

	fmt.Println("Seeding complete")
}
