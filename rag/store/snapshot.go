package store

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	snap "github.com/smallnest/medgraph/store"
	"github.com/smallnest/medgraph/store/file"
	"github.com/smallnest/medgraph/store/memory"
	"github.com/smallnest/medgraph/store/postgres"
	"github.com/smallnest/medgraph/store/redis"
	"github.com/smallnest/medgraph/store/sqlite"
)

// NewSnapshotStore opens the snapshot backend named by rawURL:
//
//	file://dir or a bare path    directory of snapshot files
//	memory://                    process-local map
//	redis://host:port/db         redis
//	sqlite://path                sqlite database file
//	postgres://... postgresql:// postgres
func NewSnapshotStore(ctx context.Context, rawURL string) (snap.SnapshotStore, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return file.NewFileSnapshotStore(rawURL)
	}

	switch strings.ToLower(scheme) {
	case "file":
		return file.NewFileSnapshotStore(rest)
	case "memory", "mem":
		return memory.NewMemorySnapshotStore(), nil
	case "redis", "rediss":
		opts, err := goredis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewRedisSnapshotStoreWithClient(goredis.NewClient(opts), "", 0), nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", rawURL)
		}
		return sqlite.NewSqliteSnapshotStore(sqlite.SqliteOptions{Path: rest})
	case "postgres", "postgresql":
		return postgres.NewPostgresSnapshotStore(ctx, postgres.PostgresOptions{ConnString: rawURL})
	}
	return nil, fmt.Errorf("unsupported snapshot store scheme %q", scheme)
}
