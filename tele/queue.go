package tele

import (
	"fmt"
	"sync"

	"github.com/eapache/queue"
	"github.com/juju/errors"
	"github.com/temoto/spq"
)

var ErrClosed = fmt.Errorf("tele queue is closed")

// Queue contract:
// - single consumer: Peek, then exactly one of Delete or DeletePush
// - Peek blocks until item is available or queue is closed (ErrClosed)
type Queue interface {
	Push([]byte) error
	Peek() (Item, error)
	Delete(Item) error
	// DeletePush moves item to tail.
	DeletePush(Item) error
	Close() error
}

type Item interface {
	Bytes() []byte
}

// Disk backed queue, survives restart.
type spqQueue struct{ q *spq.Queue }

type spqItem struct{ box spq.Box }

func (i spqItem) Bytes() []byte { return i.box.Bytes() }

func OpenSpq(path string) (Queue, error) {
	q, err := spq.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "tele queue path=%s", path)
	}
	return &spqQueue{q: q}, nil
}

func (sq *spqQueue) Push(b []byte) error { return spqError(sq.q.Push(b)) }
func (sq *spqQueue) Close() error        { return sq.q.Close() }

func (sq *spqQueue) Peek() (Item, error) {
	box, err := sq.q.Peek()
	if err != nil {
		return nil, spqError(err)
	}
	return spqItem{box}, nil
}

func (sq *spqQueue) Delete(item Item) error {
	return spqError(sq.q.Delete(item.(spqItem).box))
}

func (sq *spqQueue) DeletePush(item Item) error {
	return spqError(sq.q.DeletePush(item.(spqItem).box))
}

func spqError(err error) error {
	if err == spq.ErrClosed {
		return ErrClosed
	}
	return err
}

// Memory queue keeps at most limit items, Push drops oldest.
type memQueue struct {
	sync.Mutex
	q       *queue.Queue
	limit   int
	next    uint64
	dropped uint64
	closed  bool
	readch  chan struct{}
	stopch  chan struct{}
}

type memItem struct {
	id uint64
	b  []byte
}

func (i memItem) Bytes() []byte { return i.b }

func NewMemQueue(limit int) Queue {
	if limit <= 0 {
		panic("code error NewMemQueue limit must be positive")
	}
	return &memQueue{
		q:      queue.New(),
		limit:  limit,
		readch: make(chan struct{}, 1),
		stopch: make(chan struct{}),
	}
}

func (mq *memQueue) Push(b []byte) error {
	mq.Lock()
	defer mq.Unlock()
	if mq.closed {
		return ErrClosed
	}
	mq.pushLocked(b)
	return nil
}

func (mq *memQueue) pushLocked(b []byte) {
	for mq.q.Length() >= mq.limit {
		mq.q.Remove()
		mq.dropped++
	}
	mq.next++
	mq.q.Add(memItem{id: mq.next, b: b})
	signal(mq.readch)
}

func (mq *memQueue) Peek() (Item, error) {
	for {
		mq.Lock()
		if mq.closed {
			mq.Unlock()
			return nil, ErrClosed
		}
		if mq.q.Length() != 0 {
			item := mq.q.Peek().(memItem)
			mq.Unlock()
			return item, nil
		}
		mq.Unlock()
		select {
		case <-mq.readch:
		case <-mq.stopch:
			return nil, ErrClosed
		}
	}
}

// Item may be already dropped by overflow, then it's a no-op.
func (mq *memQueue) Delete(item Item) error {
	mq.Lock()
	defer mq.Unlock()
	if mq.closed {
		return ErrClosed
	}
	mq.removeHead(item.(memItem))
	return nil
}

func (mq *memQueue) DeletePush(item Item) error {
	mq.Lock()
	defer mq.Unlock()
	if mq.closed {
		return ErrClosed
	}
	mi := item.(memItem)
	if mq.removeHead(mi) {
		mq.pushLocked(mi.b)
	}
	return nil
}

func (mq *memQueue) removeHead(mi memItem) bool {
	if mq.q.Length() == 0 || mq.q.Peek().(memItem).id != mi.id {
		return false
	}
	mq.q.Remove()
	return true
}

func (mq *memQueue) Close() error {
	mq.Lock()
	defer mq.Unlock()
	if !mq.closed {
		mq.closed = true
		close(mq.stopch)
	}
	return nil
}

func (mq *memQueue) Len() int {
	mq.Lock()
	defer mq.Unlock()
	return mq.q.Length()
}

func (mq *memQueue) Dropped() uint64 {
	mq.Lock()
	defer mq.Unlock()
	return mq.dropped
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
