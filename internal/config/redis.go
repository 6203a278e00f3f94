package config

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from REDIS_ADDR, REDIS_PASSWORD
// and REDIS_DB.  Redis backs rate limiting and the response cache, both
// of which degrade gracefully: when the ping fails the function logs a
// warning and returns nil, and the middleware constructors treat a nil
// client as "disabled".
func NewRedisClient() *redis.Client {
	addr := getenv("REDIS_ADDR", "localhost:6379")
	dbNum, _ := strconv.Atoi(getenv("REDIS_DB", "0"))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       dbNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable at %s, rate limiting and caching disabled: %v", addr, err)
		return nil
	}
	return client
}
