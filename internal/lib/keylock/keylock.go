package keylock

import "sync"

// Locks hands out one mutex per key. An entry lives only while some caller
// holds or waits for it, so the map does not grow with every key ever seen.
type Locks struct {
	mutex sync.Mutex
	keys  map[string]*entry
}

type entry struct {
	sync.Mutex
	refs int
}

func New() *Locks {
	return &Locks{keys: make(map[string]*entry)}
}

func (l *Locks) Lock(key string) {
	l.mutex.Lock()
	e, exists := l.keys[key]
	if !exists {
		e = &entry{}
		l.keys[key] = e
	}
	e.refs++
	l.mutex.Unlock()

	e.Lock()
}

// Unlock releases the key. Unlocking a key that is not locked is a no-op.
func (l *Locks) Unlock(key string) {
	l.mutex.Lock()
	e, exists := l.keys[key]
	if !exists {
		l.mutex.Unlock()
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
	l.mutex.Unlock()

	e.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (l *Locks) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.keys)
}
