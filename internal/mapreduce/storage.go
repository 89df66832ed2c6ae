package mapreduce

import (
	"context"
	"fmt"

	"github.com/claimsight/claimsight/internal/mapreduce/storage/bolt"
	"github.com/claimsight/claimsight/internal/mapreduce/storage/memory"
)

// Storage buffers shuffled values between the receive and fold phases
// of a reducer. Buckets keep the partitions of different reducers from
// mixing; each reducer uses its own ID as the bucket.
type Storage interface {
	Append(ctx context.Context, bucket, key string, vals []string) error
	Keys(ctx context.Context, bucket string) ([]string, error)
	Get(ctx context.Context, bucket, key string) ([]string, error)
}

// OpenStorage builds the shuffle storage named by backend ("memory" or
// "bolt"). The returned cleanup releases the backend's resources; for
// bolt it also removes the scratch file.
func OpenStorage(backend, path string) (Storage, func() error, error) {
	switch backend {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "bolt":
		st, err := bolt.New(path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Destroy, nil
	default:
		return nil, nil, fmt.Errorf("mapreduce: unknown storage backend %q", backend)
	}
}
