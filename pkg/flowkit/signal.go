package flowkit

import "sync"

// signalBus is the run-scoped channel a BREAK activity publishes to and a
// WHILE/UNTIL activity subscribes from, addressed by loop id. It realises
// spec.md §4.3/§9's "signalling channel" design note: rather than relaying
// a break event frame-by-frame up through every intermediate nested
// Pipeline call, one bus shared by the whole call tree of a single
// top-level Run delivers it directly to whichever level currently holds
// the subscription for that id — unrelated outer loops, which never
// subscribe to an id that is not their own, are unaffected by construction.
type signalBus struct {
	mu   sync.Mutex
	subs map[string]chan struct{}
}

func newSignalBus() *signalBus {
	return &signalBus{subs: make(map[string]chan struct{})}
}

// subscribe registers loopID as listening for a break. The returned
// channel receives at most one value before the caller unsubscribes.
func (b *signalBus) subscribe(loopID string) chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[loopID] = ch
	b.mu.Unlock()
	return ch
}

func (b *signalBus) unsubscribe(loopID string) {
	b.mu.Lock()
	delete(b.subs, loopID)
	b.mu.Unlock()
}

// publish delivers a break to loopID's current subscriber, if any is
// registered. A publish with no matching subscriber (the loop already
// exited, or the id belongs to no loop reachable from here) is silently
// dropped, matching "non-matching signals are forwarded further" when
// there is, in fact, nothing further to forward to.
func (b *signalBus) publish(loopID string) {
	b.mu.Lock()
	ch, ok := b.subs[loopID]
	b.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// fired reports whether a break was delivered, without blocking.
func fired(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
