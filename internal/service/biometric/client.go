package biometric

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"Resona/internal/domain/models"
	drepo "Resona/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a BiometricStream backed by a heart rate sensor WebSocket.
type Client struct {
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new biometric BiometricStream.
func New(websocketURL string, reconnectDelay, pingInterval time.Duration) drepo.BiometricStream {
	return &Client{
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("biometric connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("biometric: connected")
	return nil
}

// Subscribe subscribes to the heart rate channel.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("biometric not connected")
	}
	msg := map[string]string{"type": "subscribe", "channel": "heartrate"}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe heartrate: %w", err)
	}
	log.Printf("biometric: subscribed heartrate")
	return nil
}

type hrSample struct {
	BPM int   `json:"bpm"`
	T   int64 `json:"t"` // ms
}

type hrMessage struct {
	Type string     `json:"type"`
	Data []hrSample `json:"data"`
}

// Read streams BiometricSample events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.BiometricSample, <-chan error) {
	samples := make(chan *models.BiometricSample, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(samples)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("biometric conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("biometric read: %w", err)
					return
				}
				var m hrMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-sample frames
					continue
				}
				if m.Type != "heartrate" {
					continue
				}
				for _, d := range m.Data {
					if d.BPM <= 0 {
						continue
					}
					sample := &models.BiometricSample{
						BPM:       d.BPM,
						Timestamp: time.UnixMilli(d.T),
					}
					select {
					case samples <- sample:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return samples, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
