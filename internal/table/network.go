package table

import (
	"context"
	"sync"

	"github.com/taurusgroup/mental-poker/pkg/party"
)

// Network delivers messages between the players of one table, in process.
//
// Broadcast messages reach every player except the sender; a message with To
// set only reaches that player. Messages from one sender are delivered in the
// order they were sent.
type Network struct {
	parties        party.IDSlice
	listenChannels map[party.ID]chan *Message
	closed         chan *Message
	mtx            sync.Mutex

	// record is called with every broadcast message, in the order they are sent
	record func(seq uint32, msg *Message) error
	seq    uint32
}

// NewNetwork creates a network for parties, where every inbox can hold capacity
// messages before Send blocks.
func NewNetwork(parties party.IDSlice, capacity int) *Network {
	closed := make(chan *Message)
	close(closed)
	n := &Network{
		parties:        parties,
		listenChannels: make(map[party.ID]chan *Message, len(parties)),
		closed:         closed,
	}
	for _, id := range parties {
		n.listenChannels[id] = make(chan *Message, capacity)
	}
	return n
}

// Next returns the inbox of id, or a closed channel once id called Done.
func (n *Network) Next(id party.ID) <-chan *Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	c, ok := n.listenChannels[id]
	if !ok {
		return n.closed
	}
	return c
}

// Send delivers msg, or returns early when ctx is done.
func (n *Network) Send(ctx context.Context, msg *Message) error {
	recipients, err := n.recipients(msg)
	if err != nil {
		return err
	}
	for _, c := range recipients {
		select {
		case c <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Record makes the network call record with every broadcast message.
// A failure to record fails the Send.
func (n *Network) Record(record func(seq uint32, msg *Message) error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.record = record
}

func (n *Network) recipients(msg *Message) ([]chan *Message, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.record != nil && msg.Broadcast() {
		if err := n.record(n.seq, msg); err != nil {
			return nil, err
		}
		n.seq++
	}
	var out []chan *Message
	for _, id := range n.parties {
		c, ok := n.listenChannels[id]
		if ok && msg.IsFor(id) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Done removes id from the network; messages sent to it afterwards are dropped.
func (n *Network) Done(id party.ID) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	delete(n.listenChannels, id)
	n.parties = n.parties.Remove(id)
}
