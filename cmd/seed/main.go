// File: cmd/seed/main.go
// Seeds a development database with an org, a small catalog and a few
// customers so the POS can be exercised locally.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"gym-studio-pos/internal/config"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
	pg "gym-studio-pos/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	orgID := flag.String("org", "org-dev", "org id to seed")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	orgs := pg.NewOrgSettingsRepo(pool)
	products := pg.NewProductRepo(pool)
	customers := pg.NewCustomerRepo(pool)

	if err := orgs.Save(ctx, repository.NoTX, &model.OrgSettings{
		OrgID:                *orgID,
		Currency:             "usd",
		TaxRate:              0.10,
		AnnualSuspensionDays: 30,
	}); err != nil {
		log.Fatalf("seed org settings: %v", err)
	}

	catalog := []struct {
		name     string
		kind     model.ProductKind
		price    float64
		capacity int
		taxable  bool
	}{
		{"Protein Bar", model.ProductKindShop, 4.50, 0, true},
		{"Water Bottle", model.ProductKindShop, 12.00, 0, true},
		{"Yoga Class", model.ProductKindClass, 25.00, 12, true},
		{"Beginner Course", model.ProductKindCourse, 180.00, 8, true},
		{"Day Pass", model.ProductKindCasual, 15.00, 0, true},
		{"Open Gym", model.ProductKindGeneral, 10.00, 0, true},
		{"Monthly Membership", model.ProductKindMembership, 79.00, 0, false},
		{"10-Visit Pass", model.ProductKindPrepaid, 120.00, 0, false},
	}
	for _, c := range catalog {
		p, err := model.NewProduct(uuid.NewString(), *orgID, c.name, c.kind, c.price, c.capacity, c.taxable)
		if err != nil {
			log.Fatalf("seed product %s: %v", c.name, err)
		}
		if err := products.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save product %s: %v", c.name, err)
		}
		log.Printf("product %-20s %s", c.name, p.ID)
	}

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"} {
		c := &model.Customer{
			ID:        uuid.NewString(),
			OrgID:     *orgID,
			Name:      name,
			CreatedAt: time.Now(),
		}
		if err := customers.Save(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("save customer %s: %v", name, err)
		}
		log.Printf("customer %-20s %s", name, c.ID)
	}

	log.Printf("seeded org %s", *orgID)
}
