package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pingRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func TestIsSQLiteDSN(t *testing.T) {
	assert.True(t, IsSQLiteDSN("file::memory:"))
	assert.True(t, IsSQLiteDSN("./shop.db"))
	assert.False(t, IsSQLiteDSN("host=localhost user=postgres dbname=shop"))
	assert.False(t, IsSQLiteDSN("postgres://u:p@localhost:5432/shop"))
}

func TestInitDB_SQLiteTranslatesDuplicateKey(t *testing.T) {
	db, err := InitDB("file::memory:", false, &pingRow{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&pingRow{Name: "a"}).Error)
	err = db.Create(&pingRow{Name: "a"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
