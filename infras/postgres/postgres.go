package postgres

//nolint:revive
import (
	"net"
	"net/url"
	"time"
	"tutorhub/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connection splits reads and writes so a replica can serve the read side.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  Connect(cfg, "read", cfg.DB.Postgres.Read),
		Write: Connect(cfg, "write", cfg.DB.Postgres.Write),
	}
}

// DSN builds a postgres URL for node. Credentials are escaped and the
// configured database prefix is applied to the name.
func DSN(cfg *config.Config, node config.PostgresNode, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}

	params.Set("sslmode", node.SSLMode)

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(node.Username, node.Password),
		Host:     net.JoinHostPort(node.Host, node.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + node.Name,
		RawQuery: params.Encode(),
	}

	return dsn.String()
}

// Connect retries up to MaxRetry times and exits the process when the
// database never becomes reachable.
func Connect(cfg *config.Config, name string, node config.PostgresNode) *sqlx.DB {
	pool := cfg.DB.Postgres
	logger := log.With().Str("name", name).Str("host", node.Host).Str("port", node.Port).Str("dbName", pool.Prefix+node.Name).Logger()

	for attempt := 1; attempt <= max(1, pool.MaxRetry); attempt++ {
		db, err := sqlx.Connect("postgres", DSN(cfg, node, nil))
		if err == nil {
			db.SetMaxOpenConns(pool.MaxOpenConns)
			db.SetMaxIdleConns(pool.MaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeMin) * time.Minute)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(pool.RetryWaitTime) * time.Second)
	}

	logger.Fatal().Int("attempts", pool.MaxRetry).Msg("Giving up connecting to database")

	return nil
}
