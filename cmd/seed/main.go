package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/domain/model"
	pg "marketplace-monetization/internal/infra/db/postgres"
	"marketplace-monetization/internal/infra/logging"
	"marketplace-monetization/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo, paymentRepo, logger)

	// If plans already exist, do nothing
	plans, err := planUC.ListAll(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (days=%d, price=%d IRR)\n", p.Name, p.DurationDays, p.PriceIRR)
		}
		return
	}

	// Seed the standard featured-placement tiers
	seed := []struct {
		Name     string
		Days     int
		Price    int64
		Discount int
		Features []string
	}{
		{"Weekly Boost", 7, 500_000, 0, []string{"Top of category listings", "Featured badge"}},
		{"Monthly Spotlight", 30, 1_500_000, 10, []string{"Top of category listings", "Featured badge", "Homepage carousel"}},
		{"Quarterly Premium", 90, 3_600_000, 20, []string{"Top of category listings", "Featured badge", "Homepage carousel", "Priority support"}},
	}

	for i, s := range seed {
		p, err := planUC.Create(ctx, s.Name, s.Days, s.Price, s.Discount, s.Features, i)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, days=%d, price=%d IRR)\n", p.Name, p.ID, p.DurationDays, p.PriceIRR)
	}

	// A sample code so the discount flow can be exercised right away
	discountRepo := pg.NewDiscountCodeRepo(pool)
	usageRepo := pg.NewDiscountUsageRepo(pool)
	discountUC := usecase.NewDiscountUseCase(discountRepo, usageRepo, logger)

	code := &model.DiscountCode{
		Code:        "WELCOME10",
		Type:        model.DiscountTypePercentage,
		Value:       10,
		MaxDiscount: 200_000,
		MaxUses:     100,
		MaxPerUser:  1,
		Active:      true,
	}
	if err := discountUC.Create(ctx, code); err != nil {
		log.Fatalf("create discount code: %v", err)
	}
	fmt.Printf("seeded: discount code %s (%d%%)\n", code.Code, code.Value)

	fmt.Println("Seeding complete.")
}
