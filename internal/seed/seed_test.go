package seed

import (
	"regexp"
	"testing"

	"alphaboard/internal/database"
	"alphaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestSeedPopulatesAllTables(t *testing.T) {
	db := newTestDB(t)

	err := Seed(db, Options{NumUsers: 8, NumIdeas: 12, SkipBcrypt: true})
	require.NoError(t, err)

	var userCount, ideaCount, pageCount, mediaCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.TradeIdea{}).Count(&ideaCount)
	db.Model(&models.BreakdownPage{}).Count(&pageCount)
	db.Model(&models.MediaItem{}).Count(&mediaCount)

	assert.EqualValues(t, 8, userCount)
	assert.EqualValues(t, 12, ideaCount)
	assert.GreaterOrEqual(t, pageCount, ideaCount, "every idea has at least one page")
	assert.GreaterOrEqual(t, mediaCount, ideaCount, "every idea has at least one media item")

	var adCount, linkCount, serverCount, memberCount int64
	db.Model(&models.Ad{}).Count(&adCount)
	db.Model(&models.AffiliateLink{}).Count(&linkCount)
	db.Model(&models.Server{}).Count(&serverCount)
	db.Model(&models.ServerMember{}).Count(&memberCount)

	assert.EqualValues(t, 4, adCount)
	assert.EqualValues(t, 4, linkCount)
	assert.EqualValues(t, len(serverNames), serverCount)
	assert.GreaterOrEqual(t, memberCount, serverCount, "every server has its owner as a member")
}

func TestSeedCreatesHouseAccounts(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 5, NumIdeas: 2, SkipBcrypt: true}))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.True(t, admin.IsAdmin)

	var demo models.User
	require.NoError(t, db.Where("username = ?", "demo").First(&demo).Error)
	assert.False(t, demo.IsAdmin)
}

func TestBuildIdeaPlaceholdersReferenceAttachedMedia(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)

	placeholder := regexp.MustCompile(`\[MEDIA:([A-Za-z0-9_\-\.]+)\]`)
	idea := f.BuildIdea(user)

	keys := map[string]bool{}
	for _, m := range idea.Media {
		keys[m.Key] = true
	}

	found := false
	for _, page := range idea.Pages {
		for _, match := range placeholder.FindAllStringSubmatch(page.Content, -1) {
			found = true
			assert.True(t, keys[match[1]], "placeholder %s must reference an attached item", match[0])
		}
	}
	assert.True(t, found, "at least one page embeds a media placeholder")
}

func TestSeedDirectConversationsHaveTwoParticipants(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 6, NumIdeas: 1, SkipBcrypt: true}))

	var convs []models.Conversation
	require.NoError(t, db.Preload("Participants").Find(&convs).Error)
	require.NotEmpty(t, convs)
	for _, conv := range convs {
		assert.Len(t, conv.Participants, 2)
	}
}
