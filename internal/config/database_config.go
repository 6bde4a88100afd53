package config

import "github.com/knadh/koanf/v2"

type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int
	GetDatabaseConnectAttempts() int
}

type Database struct {
	k *koanf.Koanf
}

var _ DatabaseConfig = Database{}

func (d Database) GetDatabaseURL() string {
	return d.k.String("database.url")
}

func (d Database) GetDatabaseMaxConns() int {
	return d.k.Int("database.max_conns")
}

func (d Database) GetDatabaseConnectAttempts() int {
	return d.k.Int("database.connect_attempts")
}

type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Redis struct {
	k *koanf.Koanf
}

var _ RedisConfig = Redis{}

// GetRedisAddr returns "" when revocations should be kept in memory
func (r Redis) GetRedisAddr() string {
	return r.k.String("redis.addr")
}

func (r Redis) GetRedisPassword() string {
	return r.k.String("redis.password")
}

func (r Redis) GetRedisDB() int {
	return r.k.Int("redis.db")
}
