package editor

import "sync"

// Toggle tracks whether the pristine original should be shown instead of the
// working image. It is bound to press/release of a control and is independent
// of the controller and its lock.
type Toggle struct {
	mu     sync.Mutex
	active bool

	// OnChange is called with the new value whenever it changes.
	OnChange func(active bool)
}

func (t *Toggle) Activate()   { t.set(true) }
func (t *Toggle) Deactivate() { t.set(false) }

func (t *Toggle) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Toggle) set(v bool) {
	t.mu.Lock()
	changed := t.active != v
	t.active = v
	fn := t.OnChange
	t.mu.Unlock()

	if changed && fn != nil {
		fn(v)
	}
}
