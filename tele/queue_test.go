package tele

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/spq"
)

func queuePeekString(t testing.TB, q Queue) (Item, string) {
	item, err := q.Peek()
	require.NoError(t, err)
	return item, string(item.Bytes())
}

func TestQueueOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		open func(t testing.TB) Queue
	}{
		{"memory", func(t testing.TB) Queue { return NewMemQueue(8) }},
		{"spq", func(t testing.TB) Queue {
			q, err := OpenSpq(spq.OnlyForTesting)
			require.NoError(t, err)
			return q
		}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			q := c.open(t)
			for _, s := range []string{"a", "b", "c"} {
				require.NoError(t, q.Push([]byte(s)))
			}
			item, s := queuePeekString(t, q)
			assert.Equal(t, "a", s)
			require.NoError(t, q.Delete(item))
			item, s = queuePeekString(t, q)
			assert.Equal(t, "b", s)
			require.NoError(t, q.DeletePush(item))
			item, s = queuePeekString(t, q)
			assert.Equal(t, "c", s)
			require.NoError(t, q.Delete(item))
			item, s = queuePeekString(t, q)
			assert.Equal(t, "b", s)
			require.NoError(t, q.Delete(item))

			require.NoError(t, q.Close())
			_, err := q.Peek()
			assert.Equal(t, ErrClosed, err)
			assert.Equal(t, ErrClosed, q.Push([]byte("late")))
		})
	}
}

func TestMemQueueLimit(t *testing.T) {
	t.Parallel()

	q := NewMemQueue(2).(*memQueue)
	for _, s := range []string{"1", "2", "3"} {
		require.NoError(t, q.Push([]byte(s)))
	}
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())
	_, s := queuePeekString(t, q)
	assert.Equal(t, "2", s)
}

func TestMemQueueDropPeeked(t *testing.T) {
	t.Parallel()

	q := NewMemQueue(1).(*memQueue)
	require.NoError(t, q.Push([]byte("old")))
	item, _ := queuePeekString(t, q)
	require.NoError(t, q.Push([]byte("new")))
	// peeked item was dropped by overflow, must not delete "new"
	require.NoError(t, q.Delete(item))
	require.NoError(t, q.DeletePush(item))
	_, s := queuePeekString(t, q)
	assert.Equal(t, "new", s)
	assert.Equal(t, 1, q.Len())
}

func TestMemQueuePeekBlocks(t *testing.T) {
	t.Parallel()

	q := NewMemQueue(4)
	result := make(chan string, 1)
	go func() {
		item, err := q.Peek()
		if err != nil {
			result <- err.Error()
			return
		}
		result <- string(item.Bytes())
	}()
	select {
	case s := <-result:
		t.Fatalf("Peek returned on empty queue: %s", s)
	case <-time.After(20 * time.Millisecond):
	}
	require.NoError(t, q.Push([]byte("x")))
	select {
	case s := <-result:
		assert.Equal(t, "x", s)
	case <-time.After(5 * time.Second):
		t.Fatal("Peek did not wake up")
	}

	empty := NewMemQueue(4)
	go func() {
		_, err := empty.Peek()
		result <- err.Error()
	}()
	require.NoError(t, empty.Close())
	select {
	case s := <-result:
		assert.Equal(t, ErrClosed.Error(), s)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not wake up Peek")
	}
}
