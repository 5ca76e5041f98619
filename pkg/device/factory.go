package device

import (
	"fmt"
)

// RepositoryConfig contains configuration for creating a device history
// repository.
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories.
	DB DBTX
}

// NewRepository creates a device history repository for the given
// persistence type.
func NewRepository(persistenceType string, config RepositoryConfig) (Repository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresRepository(config.DB), nil
	case "inmem", "memory":
		return NewInMemRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, inmem)", persistenceType)
	}
}
