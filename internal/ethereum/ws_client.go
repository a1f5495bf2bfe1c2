package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSClient subscribes to eth_subscribe("newHeads") notifications over
// gorilla/websocket. New-head events drive receipt checks so callers
// never poll on an interval.
type WSClient struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription ID (hex string) to delivery channel
	subs   map[string]chan Header
	subsMu sync.RWMutex

	// pendingSubs maps request ID to the subscription being established
	pendingSubs   map[uint64]*pendingSub
	pendingSubsMu sync.Mutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// pendingSub pairs an in-flight subscribe request with the channel its
// heads will be delivered on. The head channel is bound to the
// subscription ID inside the read loop, before the confirmation is
// handed back, so the very next frame can never outrun the registration.
type pendingSub struct {
	confirm chan string
	heads   chan Header
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClient{
		endpoint:    endpoint,
		config:      cfg,
		subs:        make(map[string]chan Header),
		pendingSubs: make(map[uint64]*pendingSub),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes WebSocket connection.
func (c *WSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeNewHeads subscribes to new block headers. The returned
// subscription ID is passed to Unsubscribe when the caller is done.
func (c *WSClient) SubscribeNewHeads(ctx context.Context) (string, <-chan Header, error) {
	if c.closed.Load() {
		return "", nil, fmt.Errorf("client closed")
	}

	// Small buffer absorbs bursts; heads arrive every ~12s on mainnet.
	ch := make(chan Header, 64)
	subID, err := c.subscribeInternal(ctx, ch)
	if err != nil {
		return "", nil, err
	}

	return subID, ch, nil
}

// Unsubscribe cancels a newHeads subscription and closes its channel.
func (c *WSClient) Unsubscribe(subID string) {
	c.subsMu.Lock()
	ch, ok := c.subs[subID]
	if ok {
		delete(c.subs, subID)
		close(ch)
	}
	c.subsMu.Unlock()

	if !ok || c.closed.Load() {
		return
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "eth_unsubscribe",
		Params:  []interface{}{subID},
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		c.conn.WriteJSON(req)
	}
	c.connMu.Unlock()
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, p := range c.pendingSubs {
		close(p.confirm)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	c.wg.Wait()
	return nil
}

// subscribeInternal sends the subscribe request and waits for the
// subscription ID. The head channel travels with the pending entry so
// the read loop can bind it before dispatching any further frames.
func (c *WSClient) subscribeInternal(ctx context.Context, heads chan Header) (string, error) {
	reqID := c.requestID.Add(1)

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "eth_subscribe",
		Params:  []interface{}{"newHeads"},
	}

	pending := &pendingSub{confirm: make(chan string, 1), heads: heads}
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = pending
	c.pendingSubsMu.Unlock()

	cleanup := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		cleanup()
		return "", fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		cleanup()
		return "", fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case subID, ok := <-pending.confirm:
		if !ok {
			return "", fmt.Errorf("client closed")
		}
		return subID, nil
	case <-time.After(30 * time.Second):
		cleanup()
		return "", fmt.Errorf("subscription timeout after 30s")
	case <-c.done:
		return "", fmt.Errorf("client closed")
	case <-ctx.Done():
		cleanup()
		return "", ctx.Err()
	}
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *WSClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	c.resubscribeAll()
}

// resubscribeAll re-establishes every active newHeads subscription after
// a reconnect, keeping the caller's channel bound to the new ID.
func (c *WSClient) resubscribeAll() {
	c.subsMu.RLock()
	channels := make(map[string]chan Header, len(c.subs))
	for id, ch := range c.subs {
		channels[id] = ch
	}
	c.subsMu.RUnlock()

	for oldID, ch := range channels {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		newID, err := c.subscribeInternal(ctx, ch)
		cancel()

		if err != nil {
			// Failed to resubscribe, keep old mapping
			continue
		}

		// The new ID is already bound by the read loop.
		c.subsMu.Lock()
		if newID != oldID {
			delete(c.subs, oldID)
		}
		c.subsMu.Unlock()
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClient) handleMessage(message []byte) {
	// Subscription confirmation: result is the subscription ID string.
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result != "" && resp.ID > 0 {
		c.handleSubscribeResponse(&resp)
		return
	}

	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "eth_subscription" {
		c.handleHeadNotification(&notif)
		return
	}
}

// handleSubscribeResponse registers the subscription and releases the
// waiting caller. Registration happens first: the frame right behind
// the confirmation may already be a notification for this subscription.
func (c *WSClient) handleSubscribeResponse(resp *wsSubscribeResponse) {
	c.pendingSubsMu.Lock()
	p, ok := c.pendingSubs[resp.ID]
	if ok {
		delete(c.pendingSubs, resp.ID)
	}
	c.pendingSubsMu.Unlock()
	if !ok {
		return
	}

	c.subsMu.Lock()
	c.subs[resp.Result] = p.heads
	c.subsMu.Unlock()

	select {
	case p.confirm <- resp.Result:
	default:
	}
}

// handleHeadNotification dispatches a new head to its subscriber.
func (c *WSClient) handleHeadNotification(notif *wsNotification) {
	if notif.Params == nil {
		return
	}

	number, err := parseQuantity(notif.Params.Result.Number)
	if err != nil {
		return
	}

	head := Header{
		Number: number,
		Hash:   notif.Params.Result.Hash,
	}

	c.subsMu.RLock()
	ch, ok := c.subs[notif.Params.Subscription]
	c.subsMu.RUnlock()

	if ok {
		// Drop under backpressure: a waiter only needs to learn that
		// some new head arrived, not see every one.
		select {
		case ch <- head:
		default:
		}
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  string `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription string       `json:"subscription"`
	Result       wsHeadResult `json:"result"`
}

type wsHeadResult struct {
	Number string `json:"number"`
	Hash   string `json:"hash"`
}
