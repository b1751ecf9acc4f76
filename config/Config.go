package config

import (
	"fmt"
	"time"

	"github.com/mohitkumar/closureflow/analytics"
	"github.com/mohitkumar/closureflow/closure"
	"github.com/mohitkumar/closureflow/persistence/redis"
)

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	HttpPort         int
	StorageType      StorageType
	RedisConfig      redis.Config
	InMemoryConfig   InmemStorageConfig
	HandlerUrl       string
	HandlerTimeout   time.Duration
	ExecutorCapacity int
	Concurrency      int
	WorkflowTimeout  time.Duration
	WaitInterval     time.Duration
	RetryInterval    time.Duration
	TaskTimeout      time.Duration
	AnalyticsConfig  analytics.DataCollectorConfig
	LogLevel         string
}

type InmemStorageConfig struct {
	TTL time.Duration
}

func (c Config) WorkflowOptions() closure.Options {
	return closure.Options{
		Timeout:       c.WorkflowTimeout,
		WaitInterval:  c.WaitInterval,
		RetryInterval: c.RetryInterval,
		TaskTimeout:   c.TaskTimeout,
	}
}

func (c Config) Validate() error {
	switch c.StorageType {
	case STORAGE_TYPE_REDIS:
		if len(c.RedisConfig.Addrs) == 0 {
			return fmt.Errorf("redis storage needs at least one address")
		}
		if c.RedisConfig.PoolSize < 0 {
			return fmt.Errorf("redis pool size can not be negative")
		}
	case STORAGE_TYPE_INMEM:
	default:
		return fmt.Errorf("unsupported storage type %s", c.StorageType)
	}
	if c.WorkflowTimeout <= 0 {
		return fmt.Errorf("workflow timeout must be positive")
	}
	if c.WaitInterval <= 0 {
		return fmt.Errorf("wait interval must be positive")
	}
	if c.ExecutorCapacity <= 0 {
		return fmt.Errorf("executor capacity must be positive")
	}
	return nil
}
