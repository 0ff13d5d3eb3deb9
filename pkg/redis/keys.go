package redis

import "fmt"

const keyPrefix = "cryptovol"

// RateLimitKey builds the rate limit counter key for a client identifier
func RateLimitKey(identifier string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, identifier)
}
