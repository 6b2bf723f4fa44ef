package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/database/migrations"
)

func testDBConfig(t *testing.T) *config.DBConfig {
	t.Helper()
	return &config.DBConfig{
		Driver:     config.DriverSQLite,
		SqlitePath: filepath.Join(t.TempDir(), "db", "test.db"),
	}
}

func TestOpenSQLiteRunsMigrations(t *testing.T) {
	cfg := testDBConfig(t)
	db, err := Open(*cfg)
	require.NoError(t, err)

	assert.False(t, IsPostgres(db))
	assert.True(t, db.Migrator().HasTable(&User{}))
	assert.True(t, db.Migrator().HasTable(&Conversation{}))
	assert.True(t, db.Migrator().HasIndex(&Meal{}, "idx_meals_user_created"))

	var records []migrations.MigrationRecord
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)

	// a second run is a no-op
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)
}

func TestUserDefaultsAndCascade(t *testing.T) {
	cfg := testDBConfig(t)
	db, err := Open(*cfg)
	require.NoError(t, err)

	require.NoError(t, db.Create(NewUser("+905550000001")).Error)
	require.NoError(t, db.Create(&WaterLog{UserPhone: "+905550000001", AmountML: 250}).Error)

	var user User
	require.NoError(t, db.First(&user, "phone = ?", "+905550000001").Error)
	assert.Equal(t, 2000, user.WaterGoal)
	assert.Equal(t, "23:00", user.SilentStart)
	assert.True(t, user.IsActive)
	assert.Nil(t, user.PendingCommand)
	assert.Equal(t, "Europe/Istanbul", user.Location().String())

	require.NoError(t, db.Delete(&user).Error)
	var count int64
	require.NoError(t, db.Model(&WaterLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLocationFallsBack(t *testing.T) {
	u := NewUser("x")
	u.Timezone = "Mars/Olympus"
	assert.Equal(t, DefaultTimezone, u.Location().String())
}
