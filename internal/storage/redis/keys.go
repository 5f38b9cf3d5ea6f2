package redis

import "fmt"

// Key prefix for all player data
const keyPrefix = "resonance"

// entryKey returns the Redis key for a storage entry
func entryKey(key string) string {
	return fmt.Sprintf("%s:kv:%s", keyPrefix, key)
}
