// Package redis stores knowledge-graph snapshots in Redis.
//
// Each snapshot is a single string key, so a rebuild replaces the cached
// graph with one SET and readers never see a partial blob. A companion
// "<key>:updated_at" key records the write time.
//
//	s := redis.NewRedisSnapshotStore(redis.RedisOptions{
//		Addr:   "localhost:6379",
//		Prefix: "medgraph:snapshot:", // default
//		TTL:    24 * time.Hour,       // optional expiry, forces periodic rebuilds
//	})
//	defer s.Close()
//
// Once a key expires the next build re-extracts the document.
package redis
