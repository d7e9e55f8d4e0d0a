package seeds

import (
	"log"

	"gorm.io/gorm"

	donations "k9medics_backend/internals/seeds/donations"
)

// RunAllSeeds loads development fixtures. Each seeder skips rows that
// already exist.
func RunAllSeeds(db *gorm.DB) {
	log.Println("[INFO] Running seeds...")

	//* Donations
	donations.SeedDonationsFromJSON(db, "internals/seeds/donations/data_donations.json")
}
