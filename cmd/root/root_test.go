package root

import (
	"testing"

	"github.com/dinerozz/focus-session-backend/config"
	"github.com/stretchr/testify/assert"
)

func TestDatabaseURL(t *testing.T) {
	assert.Equal(t, "sqlite://data/focus.db", DatabaseURL(config.DatabaseConfig{Driver: "sqlite", Path: "data/focus.db"}))
	assert.Equal(t,
		"postgres://focus:secret@db:5432/focus_sessions?sslmode=disable",
		DatabaseURL(config.DatabaseConfig{
			Driver: "postgres", User: "focus", Password: "secret", Host: "db", Port: "5432",
			DBName: "focus_sessions", SSLMode: "disable",
		}))
}

func TestGetRootCmd_RegistersCommands(t *testing.T) {
	cmd := GetRootCmd(&config.Config{DB: config.DatabaseConfig{Driver: "sqlite", Path: "focus.db"}}, nil)

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "session", "history"} {
		assert.True(t, names[want], want)
	}
}
