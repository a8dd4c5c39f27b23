// Package lock реализует блокировку читатель-писатель с оптимистичным чтением
// и повышением shared -> exclusive, которых нет у sync.RWMutex.
//
// Stamped собран из мьютекса, условной переменной и атомарного счётчика
// версий. Версия нечётна, пока блокировку держит писатель. Оптимистичный
// читатель запоминает чётную версию и после чтения проверяет, что она не
// изменилась.
//
// Писатели приоритетны: пока писатель ждёт, новые shared-захваты блокируются.
// Иначе цикл чтение-повышение может бесконечно крутиться за потоком читателей.
package lock

import (
	"sync"
	"sync/atomic"
)

// Stamp - версия, увиденная оптимистичным чтением.
type Stamp uint64

type Stamped struct {
	mu             sync.Mutex
	cond           *sync.Cond
	readers        int
	writer         bool
	waitingWriters int
	version        atomic.Uint64
}

func NewStamped() *Stamped {
	l := &Stamped{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// ============================================================
// Optimistic mode
// ============================================================

// TryOptimisticRead возвращает штамп для проверки после чтения. ok == false,
// если блокировку сейчас держит писатель.
func (l *Stamped) TryOptimisticRead() (Stamp, bool) {
	v := l.version.Load()
	if v&1 == 1 {
		return 0, false
	}
	return Stamp(v), true
}

// Validate сообщает, что с момента получения s писатель блокировку не брал.
func (l *Stamped) Validate(s Stamp) bool {
	return l.version.Load() == uint64(s)
}

// ============================================================
// Shared mode
// ============================================================

func (l *Stamped) RLock() {
	l.mu.Lock()
	for l.writer || l.waitingWriters > 0 {
		l.cond.Wait()
	}
	l.readers++
	l.mu.Unlock()
}

func (l *Stamped) RUnlock() {
	l.mu.Lock()
	l.readers--
	if l.readers < 0 {
		l.mu.Unlock()
		panic("lock: RUnlock of unlocked Stamped")
	}
	if l.readers == 0 {
		l.cond.Broadcast()
	}
	l.mu.Unlock()
}

// ============================================================
// Exclusive mode
// ============================================================

func (l *Stamped) Lock() {
	l.mu.Lock()
	l.waitingWriters++
	for l.writer || l.readers > 0 {
		l.cond.Wait()
	}
	l.waitingWriters--
	l.acquireWrite()
	l.mu.Unlock()
}

func (l *Stamped) Unlock() {
	l.mu.Lock()
	if !l.writer {
		l.mu.Unlock()
		panic("lock: Unlock of unlocked Stamped")
	}
	l.writer = false
	l.version.Add(1)
	l.cond.Broadcast()
	l.mu.Unlock()
}

// TryUpgrade превращает shared-захват вызывающего в exclusive, не отпуская
// его. Если есть другие читатели или ждущий писатель, возвращает false и
// shared-захват остаётся.
func (l *Stamped) TryUpgrade() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.readers != 1 || l.writer || l.waitingWriters > 0 {
		return false
	}
	l.readers = 0
	l.acquireWrite()
	return true
}

// acquireWrite вызывается под mu.
func (l *Stamped) acquireWrite() {
	l.writer = true
	l.version.Add(1)
}
