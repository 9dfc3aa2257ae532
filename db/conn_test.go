package db

import (
	"testing"

	"weatherapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteMigrates(t *testing.T) {
	d, err := New(DriverSQLite, ":memory:")
	require.NoError(t, err)

	assert.True(t, d.Migrator().HasTable(&model.User{}))
	assert.True(t, d.Migrator().HasTable(&model.Session{}))
	assert.True(t, d.Migrator().HasIndex(&model.User{}, "Email"))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New("oracle", "")
	assert.Error(t, err)
}
