package lock

import "fmt"

// ResourceKey ключ блокировки набора бронирований одной машины
func ResourceKey(resourceID int64) string {
	return fmt.Sprintf("rental:lock:resource:%d", resourceID)
}
