package configs

import (
	"log"

	"tableside/entity"

	"golang.org/x/crypto/bcrypt"
)

// SeedManager creates the first manager account from env, once.
func SeedManager() error {
	db := DB()
	email := getEnv("MANAGER_EMAIL", "")
	pass := getEnv("MANAGER_PASSWORD", "")
	if email == "" || pass == "" {
		log.Println("skip seeding manager: missing MANAGER_EMAIL/MANAGER_PASSWORD")
		return nil
	}

	var count int64
	db.Model(&entity.Staff{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil
	}

	venue, err := seedVenue()
	if err != nil {
		return err
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	manager := entity.Staff{
		Email:    email,
		Password: string(hash),
		Name:     getEnv("MANAGER_NAME", "Manager"),
		Role:     "manager",
		VenueID:  venue.ID,
	}
	return db.Create(&manager).Error
}

// SeedVenue makes sure a venue and its floor exist so terminals have
// something to point at on first boot.
func SeedVenue() error {
	_, err := seedVenue()
	return err
}

func seedVenue() (*entity.Venue, error) {
	db := DB()

	var venue entity.Venue
	if err := db.FirstOrCreate(&venue, entity.Venue{
		Name: getEnv("VENUE_NAME", "Tableside Diner"),
	}).Error; err != nil {
		return nil, err
	}
	if venue.TaxRateBps == 0 {
		venue.TaxRateBps = int64(getEnvInt("VENUE_TAX_BPS", 850))
		venue.Currency = getEnv("VENUE_CURRENCY", "INR")
		if err := db.Save(&venue).Error; err != nil {
			return nil, err
		}
	}

	var tables int64
	db.Model(&entity.Table{}).Where("venue_id = ?", venue.ID).Count(&tables)
	if tables == 0 {
		for n := 1; n <= getEnvInt("VENUE_TABLES", 12); n++ {
			t := entity.Table{
				VenueID:  venue.ID,
				Number:   n,
				Area:     "main",
				Capacity: 4,
				Status:   entity.TableAvailable,
			}
			if err := db.Create(&t).Error; err != nil {
				return nil, err
			}
		}
	}
	return &venue, nil
}
