// Package config loads the service configuration from the environment.
package config

import "fmt"

type DbConfig struct {
	Host     string `env:"LOGINWATCH_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"LOGINWATCH_PG_PORT" env-default:"5432"`
	Database string `env:"LOGINWATCH_PG_DATABASE" env-default:"loginwatch_db"`
	User     string `env:"LOGINWATCH_PG_USER" env-default:"loginwatch"`
	Password string `env:"LOGINWATCH_PG_PASSWORD" env-default:"pwd"`
}

// DSN returns the pgx connection string.
func (d DbConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Database)
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	TLS      bool   `env:"SMTP_TLS" env-default:"true"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SUPPORT_EMAIL" env-default:"support@loginwatch.local"`
}

type GeoConfig struct {
	// DBPath points at a MaxMind city database. Empty means geolocation is
	// disabled and every address resolves to UNKNOWN.
	DBPath string `env:"GEOIP_DB_PATH"`
	// ExemptIPs have no reliable geolocation and are never looked up.
	ExemptIPs []string `env:"GEOIP_EXEMPT_IPS" env-default:"127.0.0.1,0:0:0:0:0:0:0:1"`
}

type NotificationConfig struct {
	// NewLoginEnabled is the global switch for the new-device email. When
	// off, device history is still recorded.
	NewLoginEnabled bool `env:"NEW_LOGIN_NOTIFICATION_ENABLED" env-default:"true"`
}

type ServerConfig struct {
	Port int `env:"LOGINWATCH_PORT" env-default:"4000"`
	// PersistenceType selects the repository backend: postgres or inmem.
	PersistenceType string `env:"LOGINWATCH_PERSISTENCE" env-default:"inmem"`
}

type Config struct {
	Db           DbConfig
	SMTP         SMTPConfig
	Geo          GeoConfig
	Notification NotificationConfig
	Server       ServerConfig
}
