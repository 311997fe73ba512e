package server

// Broker fans one publication out to every live subscriber. Sends are
// non-blocking, a subscriber that is not draining its channel misses the
// message instead of stalling the fan-out.
type Broker struct {
	stopCh    chan struct{}
	publishCh chan interface{}
	subCh     chan chan interface{}
	unsubCh   chan chan interface{}
}

func newBroker() *Broker {
	return &Broker{
		stopCh:    make(chan struct{}),
		publishCh: make(chan interface{}, 1),
		subCh:     make(chan chan interface{}, 1),
		unsubCh:   make(chan chan interface{}, 1),
	}
}

func (b *Broker) Start() {
	subs := map[chan interface{}]struct{}{}
	for {
		select {
		case <-b.stopCh:
			return
		case ch := <-b.subCh:
			subs[ch] = struct{}{}
		case ch := <-b.unsubCh:
			delete(subs, ch)
		case msg := <-b.publishCh:
			for ch := range subs {
				select {
				case ch <- msg:
				default:
				}
			}
		}
	}
}

func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe, Unsubscribe and Publish must not hang once the broker is
// stopped, callers can race shutdown.

func (b *Broker) Subscribe() chan interface{} {
	ch := make(chan interface{}, 1)
	select {
	case b.subCh <- ch:
	case <-b.stopCh:
	}
	return ch
}

func (b *Broker) Unsubscribe(ch chan interface{}) {
	select {
	case b.unsubCh <- ch:
	case <-b.stopCh:
	}
}

func (b *Broker) Publish(msg interface{}) {
	select {
	case b.publishCh <- msg:
	case <-b.stopCh:
	}
}
