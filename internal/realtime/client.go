package realtime

import "sync"

// Client is one subscribed connection with an ordered outbound queue.
type Client struct {
	id        string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}

	return &Client{
		id:   id,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send yields queued frames in emission order.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Done is closed when the client was dropped for falling behind, or closed by its owner.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks. A full queue means the client can no longer be kept consistent.
func (c *Client) enqueue(frame []byte) bool {
	if c.closed() {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}
