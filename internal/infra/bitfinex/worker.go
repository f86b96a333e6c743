package bitfinex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maker_go/internal/event"
	"maker_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Worker handles the authenticated Bitfinex v2 WebSocket and translates
// account frames into typed events on the controller inbox.
type Worker struct {
	url       string
	signer    *Signer
	inbox     chan<- event.Event
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a stream worker feeding inbox.
func NewWorker(cfg *infra.Config, inbox chan<- event.Event) *Worker {
	url := cfg.API.Bitfinex.WSURL
	if url == "" {
		url = WSURLMainnet
	}
	return &Worker{
		url:    url,
		signer: NewSigner(cfg.API.Bitfinex.APIKey, cfg.API.Bitfinex.APISecret),
		inbox:  inbox,
	}
}

// Connect starts the WebSocket connection with automatic reconnection
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Bitfinex stream panic recovered", slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Bitfinex stream loop stopped")
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Bitfinex stream connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.readLoop(ctx)
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.authenticate(); err != nil {
		w.closeConnection()
		return fmt.Errorf("auth failed: %w", err)
	}

	slog.Info("Bitfinex stream connected")
	return nil
}

// authenticate sends the auth event; the auth result arrives as a
// regular message in the read loop.
func (w *Worker) authenticate() error {
	b, err := json.Marshal(w.signer.WSAuthArgs())
	if err != nil {
		return err
	}
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	if len(msg) == 0 {
		return
	}

	// Object frames are protocol events (info, auth, errors).
	if msg[0] == '{' {
		w.handleProtocolEvent(msg)
		return
	}

	// Array frames are channel messages: [CHAN_ID, TYPE, PAYLOAD].
	var frame []json.RawMessage
	if json.Unmarshal(msg, &frame) != nil || len(frame) < 2 {
		return
	}

	var frameType string
	if json.Unmarshal(frame[1], &frameType) != nil {
		return
	}

	switch frameType {
	case "hb":
		// heartbeat
	case "on":
		if len(frame) >= 3 {
			w.handleOrderNew(frame[2])
		}
	case "ou", "oc":
		if len(frame) >= 3 {
			w.handleOrderUpdate(frame[2])
		}
	case "n":
		if len(frame) >= 3 {
			w.handleNotification(frame[2])
		}
	}
}

func (w *Worker) handleProtocolEvent(msg []byte) {
	var ev struct {
		Event  string `json:"event"`
		Status string `json:"status"`
		Msg    string `json:"msg"`
	}
	if json.Unmarshal(msg, &ev) != nil {
		return
	}

	switch ev.Event {
	case "auth":
		if ev.Status == "OK" {
			w.send(&event.AuthenticatedEvent{})
		} else {
			slog.Error("Bitfinex stream auth rejected", slog.String("status", ev.Status))
		}
	case "error":
		slog.Error("Bitfinex stream error", slog.String("msg", ev.Msg))
	}
}

func (w *Worker) handleOrderNew(payload json.RawMessage) {
	var fields []json.RawMessage
	if json.Unmarshal(payload, &fields) != nil || len(fields) < 1 {
		return
	}
	var id int64
	if json.Unmarshal(fields[orderFieldID], &id) != nil {
		return
	}
	w.send(&event.OrderNewEvent{OrderID: id})
}

func (w *Worker) handleOrderUpdate(payload json.RawMessage) {
	var fields []json.RawMessage
	if json.Unmarshal(payload, &fields) != nil || len(fields) < orderFieldLen {
		return
	}

	var (
		id     int64
		status string
		amount decimal.Decimal
		price  decimal.Decimal
	)
	if json.Unmarshal(fields[orderFieldID], &id) != nil {
		return
	}
	if json.Unmarshal(fields[orderFieldStatus], &status) != nil {
		return
	}
	json.Unmarshal(fields[orderFieldAmount], &amount)
	json.Unmarshal(fields[orderFieldPrice], &price)

	ev := event.AcquireOrderUpdateEvent()
	ev.OrderID = id
	ev.Status = status
	ev.Amount = amount
	ev.Price = price

	if !w.send(ev) {
		event.ReleaseOrderUpdateEvent(ev) // Release if dropped
	}
}

func (w *Worker) handleNotification(payload json.RawMessage) {
	var fields []json.RawMessage
	if json.Unmarshal(payload, &fields) != nil || len(fields) < notifyFieldLen {
		return
	}

	var status, text string
	json.Unmarshal(fields[notifyFieldStatus], &status)
	json.Unmarshal(fields[notifyFieldText], &text)
	w.send(&event.NotificationEvent{Status: status, Text: text})
}

// send forwards an event without blocking the read loop; a full inbox
// drops the event. The replenishment sweep covers any resulting drift.
func (w *Worker) send(ev event.Event) bool {
	select {
	case w.inbox <- ev:
		return true
	default:
		slog.Warn("Inbox full, dropping event", slog.String("type", ev.GetType()))
		return false
	}
}

// IsConnected reports whether the socket is currently up.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

// Disconnect stops the connection loop and closes the socket.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
