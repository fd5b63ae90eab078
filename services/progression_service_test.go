package services

import (
	"path/filepath"
	"testing"

	"trickipedia/models"
	"trickipedia/xp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "progression.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserProfile{},
		&models.Category{},
		&models.Trick{},
		&models.Notification{},
		&models.UserBadge{},
	))
	return db
}

func TestEnsureProfileIdempotent(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	first, err := svc.EnsureProfile("user-1")
	require.NoError(t, err)

	second, err := svc.EnsureProfile("user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, svc.DB.Model(&models.UserProfile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAwardXPCreatesMissingProfile(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	result, err := svc.AwardXP("new-user", 105, "trick_created:kickflip")
	require.NoError(t, err)
	assert.Equal(t, int64(105), result.Points)
	assert.Equal(t, int64(105), result.Profile.XP)

	var prof models.UserProfile
	require.NoError(t, svc.DB.Where("external_user_id = ?", "new-user").First(&prof).Error)
	assert.Equal(t, int64(105), prof.XP)
}

func TestAwardXPAccumulatesAndLevelsUp(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	first, err := svc.AwardXP("user-1", 100, "trick_created:ollie")
	require.NoError(t, err)
	assert.False(t, first.LeveledUp)
	assert.Equal(t, 1, first.Progress.Current.Level)

	// 100 + 200 = 300 crosses the 250 XP boundary into level 2
	second, err := svc.AwardXP("user-1", 200, "trick_edited:ollie")
	require.NoError(t, err)
	assert.True(t, second.LeveledUp)
	assert.Equal(t, int64(300), second.Profile.XP)
	assert.Equal(t, 2, second.Progress.Current.Level)
	assert.NotEmpty(t, second.Unlocked)
	require.NotNil(t, second.Profile.LastLevelUpAt)

	var notes []models.Notification
	require.NoError(t, svc.DB.Where("external_user_id = ?", "user-1").Find(&notes).Error)

	byType := map[string]int{}
	for _, n := range notes {
		byType[n.Type]++
	}
	assert.Equal(t, 2, byType[models.NotificationTypeXPAwarded])
	assert.Equal(t, 1, byType[models.NotificationTypeLevelUp])
}

func TestAwardXPRejectsNegative(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	_, err := svc.AwardXP("user-1", -10, "oops")
	require.Error(t, err)

	var count int64
	require.NoError(t, svc.DB.Model(&models.UserProfile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "rejected award must not create a profile")
}

func TestAwardXPZeroPointsStillNotifies(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	result, err := svc.AwardXP("user-1", 0, "trick_edited:no-op")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Profile.XP)
	assert.False(t, result.LeveledUp)
}

func TestRecordTrickCreationScoresAndCounts(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	trick := &models.Trick{
		Slug:        "kickflip",
		Description: "A kickflip is performed by flicking the front foot off the edge of the nose so the board flips along its long axis.",
		VideoURLs:   models.StringList{"https://cdn.example.com/kickflip.mp4"},
		Difficulty:  4,
	}
	expected := int64(xp.ScoreCreation(trick.Snapshot()))
	require.Greater(t, expected, int64(50), "a documented trick should beat the bare creation base")

	result, err := svc.RecordTrickCreation("author-1", trick)
	require.NoError(t, err)
	assert.Equal(t, expected, result.Points)

	var prof models.UserProfile
	require.NoError(t, svc.DB.Where("external_user_id = ?", "author-1").First(&prof).Error)
	assert.Equal(t, int64(1), prof.TricksCreated)
	assert.Equal(t, expected, prof.XP)
}

func TestRecordTrickEditScoresDiff(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	old := &models.Trick{Slug: "heelflip", Description: "Like a kickflip but the other way."}
	updated := &models.Trick{
		Slug:        "heelflip",
		Description: "Like a kickflip but flipped with the heel: slide the front foot forward and kick out toward the toe-side edge so the board rotates heel-over.",
		VideoURLs:   models.StringList{"https://cdn.example.com/heelflip.mp4"},
	}
	expected := int64(xp.ScoreEdit(old.Snapshot(), updated.Snapshot()))

	result, err := svc.RecordTrickEdit("editor-1", old, updated)
	require.NoError(t, err)
	assert.Equal(t, expected, result.Points)

	var prof models.UserProfile
	require.NoError(t, svc.DB.Where("external_user_id = ?", "editor-1").First(&prof).Error)
	assert.Equal(t, int64(1), prof.TricksEdited)
	assert.Equal(t, int64(0), prof.TricksCreated)
}

func TestWelcomeAndFirstTrickBadges(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	trick := &models.Trick{Slug: "wall-run", Description: "Run at the wall, plant a foot, push upward."}
	_, err := svc.RecordTrickCreation("author-1", trick)
	require.NoError(t, err)

	var badges []models.UserBadge
	require.NoError(t, svc.DB.Where("external_user_id = ?", "author-1").Find(&badges).Error)

	codes := map[string]bool{}
	for _, b := range badges {
		codes[b.BadgeTypeID] = true
	}
	assert.True(t, codes["WELCOME"], "welcome badge should fire on first activity")
	assert.True(t, codes["FIRST_TRICK"], "first contribution badge should fire")
}

func TestGetProgressResolvesStoredXP(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	_, err := svc.AwardXP("user-1", 400, "seed")
	require.NoError(t, err)

	prof, progress, err := svc.GetProgress("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(400), prof.XP)
	assert.Equal(t, 2, progress.Current.Level)
	require.NotNil(t, progress.Next)
	assert.Equal(t, int64(350), progress.XPToNext) // 750 - 400
}

func TestMarkNotificationReadScopedToUser(t *testing.T) {
	svc := NewProgressionService(newTestDB(t))

	_, err := svc.AwardXP("user-1", 10, "seed")
	require.NoError(t, err)

	notes, err := svc.GetRecentNotifications("user-1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, notes)

	// Wrong user cannot flip someone else's notification
	require.NoError(t, svc.MarkNotificationRead("user-2", notes[0].ID))
	refetched, err := svc.GetRecentNotifications("user-1", 10)
	require.NoError(t, err)
	assert.False(t, refetched[0].Read)

	require.NoError(t, svc.MarkNotificationRead("user-1", notes[0].ID))
	refetched, err = svc.GetRecentNotifications("user-1", 10)
	require.NoError(t, err)
	assert.True(t, refetched[0].Read)
}
