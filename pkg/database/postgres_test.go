package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kilter-intake/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "kilter", SSLMode: "disable"})
	require.Equal(t, "host=db port=5432 user=u password=p dbname=kilter sslmode=disable", dsn)
}
