package main

import (
	"context"
	"flag"
	"log"
	"time"

	"rentals/internal/config"
	"rentals/internal/database"
	"rentals/internal/domain"
	"rentals/internal/pricing"
	"rentals/internal/repository"

	"gorm.io/gorm"
)

func price(v float64) *float64 { return &v }

var sampleProducts = []domain.Product{
	{OwnerID: "user_owner_demo1", Title: "Canon EOS R6 body", Category: "cameras", Location: "Bengaluru", PricePerHour: price(150), PricePerDay: price(1200), PricePerWeek: price(7000)},
	{OwnerID: "user_owner_demo1", Title: "DJI Mini 4 Pro drone", Category: "drones", Location: "Bengaluru", PricePerDay: price(1800)},
	{OwnerID: "user_owner_demo2", Title: "4-person camping tent", Category: "camping", Location: "Pune", PricePerDay: price(300), PricePerWeek: price(1500)},
	{OwnerID: "user_owner_demo2", Title: "Bosch hammer drill", Category: "tools", Location: "Pune", PricePerHour: price(50)},
	{OwnerID: "user_owner_demo3", Title: "PS5 with two controllers", Category: "gaming", Location: "Mumbai", PricePerWeek: price(3000)},
}

func main() {
	reset := flag.Bool("reset", false, "delete existing products and bookings first")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	defer database.Close(db)

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	if *reset {
		log.Println("Cleaning old data...")
		for _, table := range []string{"bookings", "products"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				log.Fatalf("clean %s: %v", table, err)
			}
		}
	}

	if err := seed(context.Background(), db, pricing.NewEngine(cfg.Pricing())); err != nil {
		log.Fatal(err)
	}
	log.Println("Seed completed")
}

func seed(ctx context.Context, db *gorm.DB, engine *pricing.Engine) error {
	products := repository.NewProductRepository(db)
	bookings := repository.NewBookingRepository(db)

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	log.Println("Creating products...")
	created := make([]*domain.Product, 0, len(sampleProducts))
	for i := range sampleProducts {
		p := sampleProducts[i]
		p.IsActive = true
		if err := products.Create(ctx, &p); err != nil {
			return err
		}
		created = append(created, &p)
		log.Printf("product id=%d title=%q", p.ID, p.Title)
	}

	// One rented right now, one starting tomorrow, one next week.
	plans := []struct {
		product *domain.Product
		renter  string
		window  pricing.Window
		status  domain.BookingStatus
	}{
		{created[0], "user_renter_demo1", pricing.Window{Start: today, End: today.AddDate(0, 0, 2)}, domain.BookingAccepted},
		{created[1], "user_renter_demo2", pricing.Window{Start: now.Add(12 * time.Hour), End: now.Add(36 * time.Hour)}, domain.BookingAccepted},
		{created[2], "user_renter_demo1", pricing.Window{Start: today.AddDate(0, 0, 7), End: today.AddDate(0, 0, 14)}, domain.BookingPending},
		{created[3], "user_renter_demo3", pricing.Window{Start: today.AddDate(0, 0, 3).Add(10 * time.Hour), End: today.AddDate(0, 0, 3).Add(13 * time.Hour)}, domain.BookingPending},
	}

	log.Println("Creating bookings...")
	for _, plan := range plans {
		q, err := engine.Quote(pricing.QuoteRequest{Rates: plan.product.RateCard(), Window: plan.window, Now: now})
		if err != nil {
			return err
		}
		b := &domain.Booking{
			ProductID: plan.product.ID,
			RenterID:  plan.renter,
			OwnerID:   plan.product.OwnerID,
			StartDate: plan.window.Start,
			EndDate:   plan.window.End,
			Status:    plan.status,
			Pricing:   domain.PricingFromQuote(q),
		}
		if err := bookings.Create(ctx, b); err != nil {
			return err
		}
		log.Printf("booking id=%d product_id=%d status=%s total=%.2f %s", b.ID, b.ProductID, b.Status, b.Pricing.Total, b.Pricing.Currency)
	}
	return nil
}
