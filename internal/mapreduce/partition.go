package mapreduce

import "github.com/spaolacci/murmur3"

// Partition assigns key to one of n reduce partitions. Every pair for
// the same key lands on the same reducer regardless of which mapper
// produced it.
func Partition(key string, n int) int {
	return int(murmur3.Sum64([]byte(key)) % uint64(n))
}
