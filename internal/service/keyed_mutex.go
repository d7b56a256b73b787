package service

import "sync"

// keyedMutex serializes operations that share a key while letting distinct
// keys proceed independently. Entries are never evicted; the key space is
// bounded by the natural keys / transaction ids seen by one process.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
