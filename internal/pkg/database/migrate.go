package database

import (
	"fmt"
	"net/url"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
)

// MigrationURL returns the golang-migrate database URL for cfg.
func MigrationURL(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverMySQL, "":
		return fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?multiStatements=true",
			url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name), nil
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("no migrations for database driver %q", cfg.Driver)
	}
}

// MigrationSource returns the file source holding the SQL migrations of the
// configured driver below dir.
func MigrationSource(dir string, cfg config.DatabaseConfig) string {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMySQL
	}
	return "file://" + dir + "/" + driver
}
