package reconcile

import "sync"

// orderLocks hands out one mutex per order guid so that racing callbacks for
// the same order serialize their guard-check + paid transition. Entries are
// reference-counted and dropped once the last holder unlocks, so the map only
// ever holds in-flight orders.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	sync.Mutex
	refs int
}

func (l *orderLocks) lock(orderGUID string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*orderLock)
	}
	m, ok := l.locks[orderGUID]
	if !ok {
		m = &orderLock{}
		l.locks[orderGUID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, orderGUID)
		}
		l.mu.Unlock()
	}
}
