package database

import (
	"testing"

	"pyland_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 迁移不能依赖方言专属的列默认值（如 MySQL 的 CURRENT_TIMESTAMP(3)），
// sqlite 跑通迁移即可说明 schema 定义是方言中立的。
func TestMigrateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:pyland_migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	// 活跃时间戳由建模钩子补齐，而不是列默认值
	u := &model.User{Name: "Ada", Email: "ada@test.dev", Password: "x", Role: model.Student}
	require.NoError(t, db.Create(u).Error)

	var loaded model.User
	require.NoError(t, db.First(&loaded, u.ID).Error)
	assert.False(t, loaded.LastLogin.IsZero())
	assert.False(t, loaded.LastSeen.IsZero())
}
