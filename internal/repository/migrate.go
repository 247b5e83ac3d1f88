package repository

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates the products and bookings tables. On postgres it also
// adds an exclusion constraint so two blocking bookings of one product can
// never overlap, even if two API instances race past the lock.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&productModel{}, &bookingModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	var exists int64
	if err := db.Raw(`SELECT COUNT(1) FROM pg_constraint WHERE conname = 'bookings_no_overlap'`).Scan(&exists).Error; err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}

	log.Println("creating bookings_no_overlap exclusion constraint")
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			product_id WITH =,
			tstzrange(start_date, end_date, '[)') WITH &&
		) WHERE (status IN ('pending', 'accepted'))`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("create overlap constraint: %w", err)
		}
	}
	return nil
}
