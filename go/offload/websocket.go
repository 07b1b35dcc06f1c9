package offload

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves geometry requests over a websocket. Each text message is
// one encoded Request; responses may come back out of order and are
// matched by ID.
type Handler struct{}

func (Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("geometry socket closed", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := Serve(payload)
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				slog.Debug("geometry socket write failed", "err", err)
			}
		}()
	}
}

// Client dispatches requests to a remote Handler over one websocket
// connection. It is safe for concurrent use.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan []byte
	err     error
	done    chan struct{}
}

// Dial connects to a geometry socket, e.g. "ws://host:port/ws/geometry".
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	c := &Client{
		conn:    conn,
		pending: map[string]chan []byte{},
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	var err error
	for {
		var payload []byte
		_, payload, err = c.conn.ReadMessage()
		if err != nil {
			break
		}
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(payload, &head) != nil {
			slog.Warn("dropping undecodable geometry response", "bytes", len(payload))
			continue
		}
		c.mu.Lock()
		ch := c.pending[head.ID]
		delete(c.pending, head.ID)
		c.mu.Unlock()
		if ch != nil {
			ch <- payload
		}
	}

	c.mu.Lock()
	c.err = errors.Wrap(err, "geometry socket")
	c.pending = map[string]chan []byte{}
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) Dispatch(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, errors.Wrap(err, "encoding request")
	}
	ch := make(chan []byte, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return Response{}, err
	}
	if _, dup := c.pending[req.ID]; dup {
		c.mu.Unlock()
		return Response{}, errors.Errorf("request %q already in flight", req.ID)
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		forget()
		return Response{}, errors.Wrap(err, "sending request")
	}

	select {
	case buf := <-ch:
		return decodeResponse(req.ID, buf)
	case <-ctx.Done():
		forget()
		return Response{}, ctx.Err()
	case <-c.done:
		c.mu.Lock()
		err := c.err
		c.mu.Unlock()
		return Response{}, err
	}
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}
