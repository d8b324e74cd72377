// Package adapters selects a RunLedger implementation from a URL-like
// string.
package adapters

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turtleshot/internal/adapters/file"
	"github.com/aretw0/turtleshot/internal/adapters/memory"
	"github.com/aretw0/turtleshot/internal/adapters/redis"
	"github.com/aretw0/turtleshot/internal/adapters/sqlite"
	"github.com/aretw0/turtleshot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// OpenLedger returns the ledger described by dsn:
//
//	""                    no ledger (nil, nil)
//	memory:               in-process
//	file:<dir>            one JSON file per run
//	sqlite:<path>         SQLite database
//	redis://host:port/db  Redis, any go-redis URL
func OpenLedger(dsn string) (ports.RunLedger, error) {
	scheme, rest, _ := strings.Cut(dsn, ":")
	switch scheme {
	case "":
		return nil, nil
	case "memory":
		return memory.New(), nil
	case "file":
		return file.New(rest), nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("sqlite ledger needs a path")
		}
		return sqlite.New(rest)
	case "redis", "rediss":
		opts, err := backend.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid redis ledger url: %w", err)
		}
		return redis.NewFromClient(backend.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("unknown ledger scheme %q", scheme)
	}
}

// CloseLedger releases ledgers that hold a connection.
func CloseLedger(ledger ports.RunLedger) error {
	if c, ok := ledger.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
