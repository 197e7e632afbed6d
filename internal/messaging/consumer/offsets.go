package consumer

import (
	"sync"

	"github.com/segmentio/kafka-go"
)

type offsetState int

const (
	offsetPending offsetState = iota
	offsetAcked
	offsetNacked
)

// partitionOffsets holds fetched messages of one partition in fetch (offset) order
type partitionOffsets struct {
	msgs  []kafka.Message
	state map[int64]offsetState
}

// offsetTracker decides which offset may be committed.
// A group commit on a partition covers every lower offset, so the committable
// offset is the end of the leading run of acked messages. A nacked message stops
// that run for good, leaving it and everything after it for redelivery.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionOffsets
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int]*partitionOffsets)}
}

// fetched registers msg before it is handed to a worker
func (t *offsetTracker) fetched(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.partitions[msg.Partition]
	// a rewind means the group was rebalanced and uncommitted messages are coming again
	if !ok || (len(p.msgs) > 0 && msg.Offset <= p.msgs[len(p.msgs)-1].Offset) {
		p = &partitionOffsets{state: make(map[int64]offsetState)}
		t.partitions[msg.Partition] = p
	}
	p.msgs = append(p.msgs, msg)
	p.state[msg.Offset] = offsetPending
}

// done records the outcome for msg. It returns the message to commit, if the
// committable offset moved, and whether the partition is now blocked by a nack.
func (t *offsetTracker) done(msg kafka.Message, success bool) (commit *kafka.Message, blocked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.partitions[msg.Partition]
	if !ok {
		return nil, false
	}
	if _, known := p.state[msg.Offset]; !known {
		return nil, false
	}
	if success {
		p.state[msg.Offset] = offsetAcked
	} else {
		p.state[msg.Offset] = offsetNacked
	}

	n := 0
	for n < len(p.msgs) && p.state[p.msgs[n].Offset] == offsetAcked {
		n++
	}
	if n > 0 {
		last := p.msgs[n-1]
		commit = &last
		for _, m := range p.msgs[:n] {
			delete(p.state, m.Offset)
		}
		p.msgs = p.msgs[n:]
	}
	blocked = len(p.msgs) > 0 && p.state[p.msgs[0].Offset] == offsetNacked
	return commit, blocked
}
