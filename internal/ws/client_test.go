package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBareClient(id string) *Client {
	return &Client{id: id, send: make(chan []byte, sendBuffer)}
}

func TestEnqueueAfterCloseIsNoop(t *testing.T) {
	c := newBareClient("s1")
	c.close()

	assert.NotPanics(t, func() {
		c.enqueue([]byte("late broadcast"))
	})
	assert.NotPanics(t, c.close)
}

// A broadcaster working off a stale client snapshot can race the read pump's
// unregister. close and enqueue must serialize so the send never lands on a
// closed channel.
func TestEnqueueCloseRace(t *testing.T) {
	for i := 0; i < 100; i++ {
		c := newBareClient("s1")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.enqueue([]byte("x"))
			}
		}()
		go func() {
			defer wg.Done()
			c.close()
		}()
		wg.Wait()
	}
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	c := &Client{id: "s1", send: make(chan []byte, 1)}
	c.enqueue([]byte("first"))
	c.enqueue([]byte("second"))

	assert.Len(t, c.send, 1)
	assert.Equal(t, []byte("first"), <-c.send)
}
