package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/database"
	"github.com/noah-isme/kultura-go/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedPlaces(t *testing.T, db *gorm.DB) (models.City, models.Location) {
	t.Helper()
	province := models.Province{Name: "Jawa Tengah"}
	require.NoError(t, db.Create(&province).Error)
	city := models.City{Name: "Surakarta", ProvinceID: province.ID}
	require.NoError(t, db.Omit("Province").Create(&city).Error)
	location := models.Location{Name: "Keraton Surakarta", Address: "Jl. Sidikoro", CityID: city.ID}
	require.NoError(t, db.Omit("City").Create(&location).Error)
	return city, location
}

func TestUserRepositoryCreateWithProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{Email: "  Sari@Example.com ", Role: models.RoleUser}
	profile := models.UserProfile{Fullname: "Sari"}
	require.NoError(t, repo.CreateWithProfile(ctx, &user, &profile))
	require.NotEmpty(t, user.ID)
	require.Equal(t, user.ID, profile.UserID)

	found, err := repo.FindByEmail(ctx, "sari@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	stored, err := repo.GetProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Sari", stored.Fullname)
	require.Equal(t, "sari@example.com", stored.User.Email)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEventRepositoryListFiltersAndPages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()
	city, location := seedPlaces(t, db)

	start := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		event := models.Event{
			Name:          fmt.Sprintf("Festival %d", i),
			StartDate:     start.Add(time.Duration(i) * 24 * time.Hour),
			EndDate:       start.Add(time.Duration(i)*24*time.Hour + 4*time.Hour),
			IsKidFriendly: i%2 == 0,
			LocationID:    location.ID,
		}
		require.NoError(t, repo.Create(ctx, &event))
	}

	events, total, err := repo.List(ctx, EventFilter{CityID: city.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, events, 1)
	require.Equal(t, "Festival 2", events[0].Name)
	require.NotNil(t, events[0].Location.City)

	kid := true
	_, total, err = repo.List(ctx, EventFilter{KidFriendly: &kid})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	_, total, err = repo.List(ctx, EventFilter{Search: "festival 1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, total, err = repo.List(ctx, EventFilter{CityID: "elsewhere"})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestEventRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)

	err := repo.Delete(context.Background(), "nope")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiscussionRepositoryThreadLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	_, err := repo.GetThreadByEventID(ctx, "e1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	thread := models.Thread{EventID: "e1", CreatorID: "u1", Status: models.ThreadStatusOpen}
	require.NoError(t, repo.CreateThread(ctx, &thread))
	require.True(t, thread.HasParticipant("u1"))

	first, err := repo.AddParticipant(ctx, thread.ID, "u2")
	require.NoError(t, err)
	again, err := repo.AddParticipant(ctx, thread.ID, "u2")
	require.NoError(t, err)
	require.True(t, first.JoinedAt.Equal(again.JoinedAt))

	stored, err := repo.GetThreadByEventID(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, stored.Participants, 2)
	require.True(t, stored.HasParticipant("u2"))

	ok, err := repo.IsParticipant(ctx, thread.ID, "u3")
	require.NoError(t, err)
	require.False(t, ok)

	counts, err := repo.ParticipantCounts(ctx, []string{"e1", "e2"})
	require.NoError(t, err)
	require.Equal(t, int64(2), counts["e1"])
	require.Zero(t, counts["e2"])
}

func TestDiscussionRepositoryMessagesOrdered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	thread := models.Thread{EventID: "e1", CreatorID: "u1"}
	require.NoError(t, repo.CreateThread(ctx, &thread))

	base := time.Now().UTC()
	later := models.Message{ThreadID: thread.ID, SenderID: "u1", Content: "second", CreatedAt: base.Add(time.Minute)}
	earlier := models.Message{ThreadID: thread.ID, SenderID: "u1", Content: "first", CreatedAt: base}
	require.NoError(t, repo.CreateMessage(ctx, &later))
	require.NoError(t, repo.CreateMessage(ctx, &earlier))

	messages, err := repo.ListMessages(ctx, thread.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "first", messages[0].Content)

	earlier.Content = "edited"
	require.NoError(t, repo.UpdateMessage(ctx, &earlier))
	got, err := repo.GetMessage(ctx, earlier.ID)
	require.NoError(t, err)
	require.Equal(t, "edited", got.Content)

	require.NoError(t, repo.DeleteMessage(ctx, earlier.ID))
	require.ErrorIs(t, repo.DeleteMessage(ctx, earlier.ID), gorm.ErrRecordNotFound)
}

func TestDiscussionRepositoryListsLatestWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	thread := models.Thread{EventID: "e1", CreatorID: "u1"}
	require.NoError(t, repo.CreateThread(ctx, &thread))

	base := time.Now().UTC().Add(-time.Hour)
	for i := 1; i <= 201; i++ {
		message := models.Message{ThreadID: thread.ID, SenderID: "u1", Content: fmt.Sprintf("m%03d", i), CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.CreateMessage(ctx, &message))
	}

	messages, err := repo.ListMessages(ctx, thread.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 200)
	require.Equal(t, "m002", messages[0].Content)
	require.Equal(t, "m201", messages[199].Content)

	recent, err := repo.ListMessages(ctx, thread.ID, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"m199", "m200", "m201"}, []string{recent[0].Content, recent[1].Content, recent[2].Content})
}

func TestBadgeRepositoryAwardIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	badge := models.Badge{ID: "explorer", Name: "Explorer"}
	require.NoError(t, db.Create(&badge).Error)

	require.NoError(t, repo.Award(ctx, "u1", "explorer"))
	require.NoError(t, repo.Award(ctx, "u1", "explorer"))

	earned, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, earned, 1)
	require.Equal(t, "Explorer", earned[0].Badge.Name)
}

func TestPlaceRepositorySearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaceRepository(db)
	ctx := context.Background()
	city, _ := seedPlaces(t, db)

	cities, err := repo.SearchCities(ctx, "sura", 5)
	require.NoError(t, err)
	require.Len(t, cities, 1)

	locations, err := repo.ListLocations(ctx, city.ID)
	require.NoError(t, err)
	require.Len(t, locations, 1)

	locations, err = repo.SearchLocations(ctx, "sidikoro", 0)
	require.NoError(t, err)
	require.Len(t, locations, 1)

	all, err := repo.SearchLocations(ctx, "%", 0)
	require.NoError(t, err)
	require.Len(t, all, 1, "wildcards are stripped from the query")
}
