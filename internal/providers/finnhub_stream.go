package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/observability"
)

// DefaultFinnhubWSURL is the public Finnhub websocket endpoint.
const DefaultFinnhubWSURL = "wss://ws.finnhub.io"

// ErrStreamClosed is returned by operations on a closed stream.
var ErrStreamClosed = errors.New("finnhub stream closed")

// StreamConfig configures websocket behavior.
type StreamConfig struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	// Buffer is the capacity of the News channel.
	Buffer int
}

// DefaultStreamConfig returns default websocket configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      90 * time.Second,
		WriteTimeout:     10 * time.Second,
		Buffer:           1000,
	}
}

// Stream is a Finnhub news subscription over websocket.
// It does not reconnect; News is closed when the connection ends.
type Stream struct {
	config StreamConfig
	logger *log.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	news   chan adapter.Envelope
	done   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup

	errMu   sync.Mutex
	readErr error
}

type streamCommand struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

type streamMessage struct {
	Type string        `json:"type"`
	Data []finnhubNews `json:"data"`
	Msg  string        `json:"msg"`
}

// DialStream connects to endpoint with token and starts the read and ping loops.
func DialStream(ctx context.Context, endpoint, token string, config *StreamConfig, logger *log.Logger) (*Stream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse stream endpoint: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	s := &Stream{
		config: cfg,
		logger: logger,
		conn:   conn,
		news:   make(chan adapter.Envelope, cfg.Buffer),
		done:   make(chan struct{}),
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

// Subscribe requests news for symbol.
func (s *Stream) Subscribe(symbol string) error {
	return s.send(streamCommand{Type: "subscribe-news", Symbol: strings.ToUpper(symbol)})
}

// Unsubscribe stops news for symbol.
func (s *Stream) Unsubscribe(symbol string) error {
	return s.send(streamCommand{Type: "unsubscribe-news", Symbol: strings.ToUpper(symbol)})
}

// News returns the channel of received records.
func (s *Stream) News() <-chan adapter.Envelope {
	return s.news
}

// Err returns the error that ended the read loop, if any.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.readErr
}

// Close sends a close frame, closes the connection and waits for the loops to exit.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.writeMu.Lock()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.config.WriteTimeout))
	err := s.conn.Close()
	s.writeMu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Stream) send(cmd streamCommand) error {
	if s.closed.Load() {
		return ErrStreamClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("write %s: %w", cmd.Type, err)
	}
	return nil
}

func (s *Stream) readLoop() {
	defer s.wg.Done()
	defer close(s.news)

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.errMu.Lock()
				s.readErr = err
				s.errMu.Unlock()
				s.logger.Printf("WARN finnhub stream read: %v", err)
			}
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Printf("WARN finnhub stream: malformed message: %v", err)
			continue
		}

		switch msg.Type {
		case "news":
			for _, item := range msg.Data {
				symbol := strings.TrimSpace(strings.Split(item.Related, ",")[0])
				if symbol == "" {
					continue
				}
				observability.RecordStreamMessage()
				select {
				case s.news <- adapter.Envelope{Symbol: symbol, Record: item.record()}:
				case <-s.done:
					return
				}
			}
		case "error":
			s.logger.Printf("WARN finnhub stream error: %s", msg.Msg)
		}
	}
}

func (s *Stream) pingLoop() {
	defer s.wg.Done()

	if s.config.PingInterval <= 0 {
		<-s.done
		return
	}

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
