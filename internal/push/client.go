package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	gosync "sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second

	defaultReconnectDelay = 5 * time.Second
)

// Listener receives subscription events. Callbacks run on the read
// goroutine; any of them may be nil.
type Listener struct {
	OnMessage    func(body []byte)
	OnConnect    func()
	OnDisconnect func(err error)
}

// Config configures a Dialer.
type Config struct {
	// URL is the WebSocket endpoint, e.g. ws://localhost:8080/ws/websocket.
	URL            string
	Topic          string
	ReconnectDelay time.Duration
	Log            *logrus.Entry
}

// Dialer opens topic subscriptions on a STOMP broker reached over a raw
// WebSocket.
type Dialer struct {
	cfg Config
	ws  websocket.Dialer
}

// NewDialer creates a Dialer.
func NewDialer(cfg Config) *Dialer {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	cfg.Log = cfg.Log.WithField("component", "push")

	return &Dialer{
		cfg: cfg,
		ws: websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// WebSocketURL derives the WebSocket endpoint from an HTTP API origin.
func WebSocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}

// Connect starts a subscription that keeps itself connected until Close
// is called or ctx ends. It returns immediately; connection progress is
// reported through l.
func (d *Dialer) Connect(ctx context.Context, token string, l Listener) (*Subscription, error) {
	if d.cfg.URL == "" {
		return nil, errors.New("push url is not configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		dialer:   d,
		token:    token,
		listener: l,
		log:      d.cfg.Log,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.run(ctx)
	return s, nil
}

// Subscription is a live, self-reconnecting topic subscription.
type Subscription struct {
	dialer   *Dialer
	token    string
	listener Listener
	log      *logrus.Entry

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce gosync.Once

	mu   gosync.Mutex
	conn *websocket.Conn
}

// Close sends DISCONNECT, closes the socket, and stops reconnecting. It
// is safe to call more than once.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		conn := s.conn
		s.conn = nil
		if conn != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if data, err := Encode(frame.New(frame.DISCONNECT)); err == nil {
				_ = conn.WriteMessage(websocket.TextMessage, data)
			}
			_ = conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			conn.Close()
		}
		s.mu.Unlock()

		s.cancel()
		<-s.done
	})
	return nil
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)

	delay := s.dialer.cfg.ReconnectDelay
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return
		}

		if s.listener.OnDisconnect != nil {
			s.listener.OnDisconnect(err)
		}
		s.log.WithError(err).WithField("retry_in", delay).Warn("push connection lost")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// session runs one connection from dial to failure.
func (s *Subscription) session(ctx context.Context) error {
	conn, _, err := s.dialer.ws.DialContext(ctx, s.dialer.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		conn.Close()
		return ctx.Err()
	}
	s.conn = conn
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
			conn.Close()
		}
		s.mu.Unlock()
	}()

	host := ""
	if u, err := url.Parse(s.dialer.cfg.URL); err == nil {
		host = u.Hostname()
	}

	connect := frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.2",
		frame.Host, host,
		frame.HeartBeat, "0,0",
	)
	if s.token != "" {
		connect.Header.Add("Authorization", "Bearer "+s.token)
	}
	if err := s.write(conn, connect); err != nil {
		return fmt.Errorf("sending connect: %w", err)
	}

	if err := s.awaitConnected(conn); err != nil {
		return err
	}

	subscribe := frame.New(frame.SUBSCRIBE,
		frame.Id, uuid.NewString(),
		frame.Destination, s.dialer.cfg.Topic,
		frame.Ack, "auto",
	)
	if err := s.write(conn, subscribe); err != nil {
		return fmt.Errorf("sending subscribe: %w", err)
	}

	s.log.WithField("topic", s.dialer.cfg.Topic).Info("push subscribed")
	if s.listener.OnConnect != nil {
		s.listener.OnConnect()
	}

	for {
		frames, err := s.read(conn)
		if err != nil {
			return err
		}
		for _, f := range frames {
			switch f.Command {
			case frame.MESSAGE:
				if s.listener.OnMessage != nil {
					s.listener.OnMessage(f.Body)
				}
			case frame.ERROR:
				return fmt.Errorf("broker error: %s", f.Header.Get(frame.Message))
			}
		}
	}
}

func (s *Subscription) awaitConnected(conn *websocket.Conn) error {
	for {
		frames, err := s.read(conn)
		if err != nil {
			return fmt.Errorf("awaiting connected: %w", err)
		}
		for _, f := range frames {
			switch f.Command {
			case frame.CONNECTED:
				return nil
			case frame.ERROR:
				return fmt.Errorf("broker rejected connect: %s", f.Header.Get(frame.Message))
			}
		}
	}
}

func (s *Subscription) read(conn *websocket.Conn) ([]*frame.Frame, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	frames, err := Decode(data)
	if err != nil {
		s.log.WithError(err).Debug("dropping malformed frame")
	}
	return frames, nil
}

func (s *Subscription) write(conn *websocket.Conn, f *frame.Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != conn {
		return errors.New("connection closed")
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
