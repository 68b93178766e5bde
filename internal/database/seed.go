package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kultura-go/internal/authn"
	"github.com/noah-isme/kultura-go/internal/models"
)

const curatorEmail = "curator@kultura.id"

// SeedOptions controls the demo data written by Seed.
type SeedOptions struct {
	DemoEmail    string
	DemoPassword string
	Now          time.Time
}

type seedCity struct {
	name      string
	locations []models.Location
}

var seedPlaces = []struct {
	province string
	cities   []seedCity
}{
	{
		province: "Daerah Istimewa Yogyakarta",
		cities: []seedCity{
			{name: "Yogyakarta", locations: []models.Location{
				{Name: "Keraton Ngayogyakarta", Address: "Jl. Rotowijayan Blok No. 1", Latitude: -7.8053, Longitude: 110.3642},
				{Name: "Alun-alun Utara", Address: "Jl. Pangurakan", Latitude: -7.8033, Longitude: 110.3644},
			}},
		},
	},
	{
		province: "Bali",
		cities: []seedCity{
			{name: "Denpasar", locations: []models.Location{
				{Name: "Taman Werdhi Budaya", Address: "Jl. Nusa Indah", Latitude: -8.6553, Longitude: 115.2336},
			}},
			{name: "Gianyar", locations: []models.Location{
				{Name: "Puri Saren Ubud", Address: "Jl. Raya Ubud", Latitude: -8.5069, Longitude: 115.2625},
			}},
		},
	},
}

var seedBadges = []models.Badge{
	{ID: "explorer", Name: "Explorer", Description: "Joined a first event discussion."},
	{ID: "storyteller", Name: "Storyteller", Description: "Posted ten discussion messages."},
	{ID: "host", Name: "Host", Description: "Created an event."},
}

// Seed writes demo places, badges, the demo account and two events. It is a
// no-op when provinces already exist.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	var provinces int64
	if err := db.WithContext(ctx).Model(&models.Province{}).Count(&provinces).Error; err != nil {
		return fmt.Errorf("count provinces: %w", err)
	}
	if provinces > 0 {
		return nil
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venues []models.Location
		for _, entry := range seedPlaces {
			province := models.Province{Name: entry.province}
			if err := tx.Create(&province).Error; err != nil {
				return fmt.Errorf("seed province: %w", err)
			}
			for _, cityEntry := range entry.cities {
				city := models.City{Name: cityEntry.name, ProvinceID: province.ID}
				if err := tx.Omit(clause.Associations).Create(&city).Error; err != nil {
					return fmt.Errorf("seed city: %w", err)
				}
				for _, location := range cityEntry.locations {
					location.CityID = city.ID
					if err := tx.Omit(clause.Associations).Create(&location).Error; err != nil {
						return fmt.Errorf("seed location: %w", err)
					}
					venues = append(venues, location)
				}
			}
		}

		badges := append([]models.Badge(nil), seedBadges...)
		if err := tx.Create(&badges).Error; err != nil {
			return fmt.Errorf("seed badges: %w", err)
		}

		curator, err := seedDemoUser(tx, opts)
		if err != nil {
			return err
		}
		creatorID := curator.ID

		events := []models.Event{
			{
				Name:          "Sekaten",
				Description:   "Week-long gamelan and night market before Maulud.",
				StartDate:     opts.Now.Add(7 * 24 * time.Hour),
				EndDate:       opts.Now.Add(14 * 24 * time.Hour),
				IsKidFriendly: true,
				LocationID:    venues[1].ID,
				CreatorID:     creatorID,
			},
			{
				Name:        "Kecak at Puri Saren",
				Description: "Evening kecak and fire dance performance.",
				StartDate:   opts.Now.Add(3 * 24 * time.Hour),
				EndDate:     opts.Now.Add(3*24*time.Hour + 2*time.Hour),
				LocationID:  venues[3].ID,
				CreatorID:   creatorID,
			},
		}
		for i := range events {
			if err := tx.Omit(clause.Associations).Create(&events[i]).Error; err != nil {
				return fmt.Errorf("seed event: %w", err)
			}
		}
		return nil
	})
}

// seedDemoUser creates the account that owns the seeded events. Without demo
// credentials it is a curator account nobody can sign in to.
func seedDemoUser(tx *gorm.DB, opts SeedOptions) (models.User, error) {
	email, password := opts.DemoEmail, opts.DemoPassword
	if strings.TrimSpace(email) == "" || password == "" {
		email, password = curatorEmail, uuid.NewString()
	}

	hash, err := authn.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash demo password: %w", err)
	}

	user := models.User{Email: strings.ToLower(strings.TrimSpace(email)), Role: models.RoleUser, PasswordHash: hash}
	if err := tx.Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("seed demo user: %w", err)
	}
	profile := models.UserProfile{UserID: user.ID, Fullname: "Demo Traveller"}
	if err := tx.Omit(clause.Associations).Create(&profile).Error; err != nil {
		return models.User{}, fmt.Errorf("seed demo profile: %w", err)
	}
	award := models.UserBadge{UserID: user.ID, BadgeID: "explorer", EarnedAt: opts.Now}
	if err := tx.Omit(clause.Associations).Create(&award).Error; err != nil {
		return models.User{}, fmt.Errorf("seed demo badge: %w", err)
	}
	return user, nil
}
