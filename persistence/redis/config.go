package redis

import "time"

type Config struct {
	Addrs     []string
	Namespace string
	PoolSize  int
	Password  string
	// TTL bounds how long a snapshot is kept, zero keeps it forever.
	TTL time.Duration
}
