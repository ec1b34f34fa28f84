package redis

import "fmt"

// UserRateKey is the sliding-window rate limit key for an authenticated user.
func UserRateKey(userID uint) string {
	return fmt.Sprintf("giftstore:rate:user:%d", userID)
}

// IPRateKey is the fallback rate limit key for unauthenticated callers.
func IPRateKey(ip string) string {
	return fmt.Sprintf("giftstore:rate:ip:%s", ip)
}
