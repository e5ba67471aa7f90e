package fireplace

import "sync"

// SubscriptionID identifies a registered state listener.
type SubscriptionID uint64

type subscriber struct {
	id SubscriptionID
	fn func(State)
}

// Notifier calls listeners synchronously, in registration order.
type Notifier struct {
	mu   sync.Mutex
	next SubscriptionID
	subs []subscriber
}

func (n *Notifier) Subscribe(fn func(State)) SubscriptionID {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.subs = append(n.subs, subscriber{id: n.next, fn: fn})
	return n.next
}

// Unsubscribe removes a listener and reports whether it was registered.
func (n *Notifier) Unsubscribe(id SubscriptionID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Notifier) Notify(s State) {
	n.mu.Lock()
	subs := n.subs
	n.mu.Unlock()
	for _, sub := range subs {
		sub.fn(s)
	}
}
