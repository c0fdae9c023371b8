package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		Action:     entities.AuditActionBookAdd,
		EntityType: "book",
		EntitySlug: "learning-go",
		Actor:      "octocat",
		Status:     entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for i := 0; i < 15; i++ {
		err := repo.LogEvent(&entities.AuditEvent{
			Action:    entities.AuditActionBookUpdate,
			Actor:     "octocat",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		})
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		err := repo.LogEvent(&entities.AuditEvent{
			Action: entities.AuditActionTopicDelete,
			Actor:  "octocat",
			Status: entities.AuditStatusFailed,
		})
		require.NoError(t, err)
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents(50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(10, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 10)
	})

	t.Run("by action", func(t *testing.T) {
		events, err := repo.GetEventsByAction(entities.AuditActionTopicDelete, 0)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.LogEvent(&entities.AuditEvent{Action: entities.AuditActionSeed, CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{Action: entities.AuditActionSeed}))

	deleted, err := repo.DeleteOldEvents(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
