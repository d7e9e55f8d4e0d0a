package donations

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"k9medics_backend/internals/features/donations/donations/model"
)

type DonationSeed struct {
	OrderID   string     `json:"order_id"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	Email     string     `json:"email"`
	Status    string     `json:"status"`
	Gateway   string     `json:"gateway"`
	SessionID string     `json:"session_id"`
	PaidAt    *time.Time `json:"paid_at"`
}

func SeedDonationsFromJSON(db *gorm.DB, filePath string) {
	log.Println("[INFO] Reading seed file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("[ERROR] read seed file: %v", err)
		return
	}

	rows, err := parseDonationSeeds(file)
	if err != nil {
		log.Printf("[ERROR] decode seed file: %v", err)
		return
	}

	var existing []string
	if err := db.Model(&model.Donation{}).
		Select("donation_order_id").
		Find(&existing).Error; err != nil {
		log.Printf("[ERROR] load existing order ids: %v", err)
		return
	}
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}

	var fresh []model.Donation
	for _, d := range rows {
		if seen[d.DonationOrderID] {
			continue
		}
		fresh = append(fresh, d)
	}
	if len(fresh) == 0 {
		log.Println("[INFO] Donation seeds already present")
		return
	}
	if err := db.Create(&fresh).Error; err != nil {
		log.Printf("[ERROR] insert donation seeds: %v", err)
		return
	}
	log.Printf("[INFO] Seeded %d donations", len(fresh))
}

func parseDonationSeeds(raw []byte) ([]model.Donation, error) {
	var seeds []DonationSeed
	if err := sonic.Unmarshal(raw, &seeds); err != nil {
		return nil, err
	}

	out := make([]model.Donation, 0, len(seeds))
	for i, s := range seeds {
		if s.OrderID == "" || s.Amount <= 0 {
			return nil, fmt.Errorf("seed %d: order_id and a positive amount are required", i)
		}
		d := model.Donation{
			DonationID:             uuid.New(),
			DonationOrderID:        s.OrderID,
			DonationAmount:         s.Amount,
			DonationCurrency:       strings.ToLower(orDefault(s.Currency, "usd")),
			DonationStatus:         orDefault(s.Status, model.DonationStatusPending),
			DonationPaymentGateway: orDefault(s.Gateway, model.GatewayStripe),
			DonationPaidAt:         s.PaidAt,
		}
		if s.Email != "" {
			email := strings.ToLower(s.Email)
			d.DonationEmail = &email
		}
		if s.SessionID != "" {
			sid := s.SessionID
			d.DonationSessionID = &sid
		}
		out = append(out, d)
	}
	return out, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
