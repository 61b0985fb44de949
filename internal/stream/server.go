// ABOUTME: WebSocket server that fans encoded packets out to live listeners
// ABOUTME: Handles the hello handshake, clock sync and per-client write queues
package stream

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/streamenc-go/internal/metrics"
	"github.com/Resonate-Protocol/streamenc-go/internal/version"
	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	ProtocolVersion = 1

	// AudioChunkMessageType tags binary packet frames
	AudioChunkMessageType = 1

	// Path the websocket endpoint is mounted on
	Path = "/stream"

	sendBuffer    = 100
	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
	shutdownGrace = 5 * time.Second
)

// ErrSendBufferFull is returned when a listener's queue cannot take more frames
var ErrSendBufferFull = errors.New("client send buffer full")

// Config holds server configuration
type Config struct {
	Name string
}

type client struct {
	id       string
	name     string
	conn     *websocket.Conn
	sendChan chan interface{}
	done     chan struct{}
}

// Server broadcasts one encoded stream to every connected listener
type Server struct {
	config   Config
	serverID string
	start    StreamStart
	logger   *zap.Logger

	upgrader websocket.Upgrader

	clients   map[string]*client
	clientsMu sync.RWMutex
	closing   bool // set under clientsMu once shutdown starts

	clockStart time.Time
	wg         sync.WaitGroup
}

// New creates a server announcing the stream described by start
func New(config Config, start StreamStart, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Name == "" {
		config.Name = version.Product
	}

	s := &Server{
		config:     config,
		serverID:   uuid.New().String(),
		start:      start,
		clients:    make(map[string]*client),
		clockStart: time.Now(),
	}
	s.logger = logger.With(zap.String("server", s.serverID))
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// Non-browser clients send no Origin
			origin := r.Header.Get("Origin")
			return origin == "" || origin == "http://localhost" || origin == "http://127.0.0.1"
		},
	}
	return s
}

// Handler returns the HTTP handler serving the websocket endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleWebSocket)
	return mux
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stream server listening", zap.String("addr", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.clientsMu.Lock()
	s.closing = true
	s.clientsMu.Unlock()
	s.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("stream server shutdown", zap.Error(err))
	}
	s.closeAll()
	s.wg.Wait()
	return nil
}

// Broadcast queues pkt for every listener. Listeners whose queue is full
// miss the packet; it is counted and never blocks the encoder.
func (s *Server) Broadcast(pkt streamenc.Packet) {
	chunk := CreateAudioChunk(pkt.TimeBase.Duration(pkt.PTS).Microseconds(), pkt.Data)

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		if err := s.sendBinary(c, chunk); err != nil {
			metrics.StreamDroppedTotal.Inc()
			s.logger.Debug("dropped packet", zap.String("client", c.id), zap.Int64("pts", pkt.PTS))
		}
	}
}

// End tells every listener the stream is over
func (s *Server) End() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		_ = s.sendMessage(c, TypeStreamEnd, struct{}{})
	}
}

// ClientCount returns the number of registered listeners
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) closeAll() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	s.logger.Debug("new connection", zap.String("remote", r.RemoteAddr))
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		s.logger.Warn("read hello", zap.Error(err))
		return
	}
	if msg.Type != TypeClientHello {
		s.reject(conn, "expected_hello", fmt.Sprintf("expected %s, got %s", TypeClientHello, msg.Type))
		return
	}

	var hello ClientHello
	if err := decodePayload(msg.Payload, &hello); err != nil {
		s.reject(conn, "bad_hello", err.Error())
		return
	}
	if hello.ClientID == "" || hello.Name == "" {
		s.reject(conn, "bad_hello", "client_id and name are required")
		return
	}

	c := &client{
		id:       hello.ClientID,
		name:     hello.Name,
		conn:     conn,
		sendChan: make(chan interface{}, sendBuffer),
		done:     make(chan struct{}),
	}

	// The hello messages are queued before registration so no packet can
	// overtake them.
	_ = s.sendMessage(c, TypeServerHello, ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  ProtocolVersion,
		Product:  version.Product,
		Build:    version.Version,
	})
	_ = s.sendMessage(c, TypeStreamStart, s.start)

	s.clientsMu.Lock()
	if s.closing {
		s.clientsMu.Unlock()
		s.reject(conn, "shutting_down", "Server is shutting down")
		return
	}
	if _, exists := s.clients[c.id]; exists {
		s.clientsMu.Unlock()
		s.logger.Warn("duplicate client id", zap.String("client", c.id))
		s.reject(conn, "duplicate_client_id", "Client ID already connected")
		return
	}
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	metrics.StreamClients.Inc()

	log := s.logger.With(zap.String("client", c.id))
	log.Info("client connected", zap.String("name", c.name))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c, log)
	}()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		close(c.done)
		metrics.StreamClients.Dec()
		log.Info("client disconnected")
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read", zap.Error(err))
			}
			return
		}
		s.handleClientMessage(c, log, msg)
	}
}

// reject writes a server/error directly; the connection has no writer yet
func (s *Server) reject(conn *websocket.Conn, code, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_ = conn.WriteJSON(Message{
		Type:    TypeServerError,
		Payload: ServerError{Error: code, Message: message},
	})
}

func (s *Server) clientWriter(c *client, log *zap.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			var err error
			switch v := msg.(type) {
			case []byte:
				err = c.conn.WriteMessage(websocket.BinaryMessage, v)
			default:
				err = c.conn.WriteJSON(v)
			}
			if err != nil {
				log.Debug("websocket write", zap.Error(err))
				c.conn.Close()
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleClientMessage(c *client, log *zap.Logger, msg Message) {
	switch msg.Type {
	case TypeClientTime:
		s.handleTimeSync(c, log, msg.Payload)
	default:
		log.Debug("unknown message type", zap.String("type", msg.Type))
	}
}

func (s *Server) handleTimeSync(c *client, log *zap.Logger, payload interface{}) {
	serverRecv := s.clockMicros()

	var ct ClientTime
	if err := decodePayload(payload, &ct); err != nil {
		log.Warn("bad client/time", zap.Error(err))
		return
	}

	// Transmit time is taken at queue time, not wire time.
	resp := ServerTime{
		ClientTransmitted: ct.ClientTransmitted,
		ServerReceived:    serverRecv,
		ServerTransmitted: s.clockMicros(),
	}
	if err := s.sendMessage(c, TypeServerTime, resp); err != nil {
		log.Warn("send server/time", zap.Error(err))
	}
}

func (s *Server) sendMessage(c *client, msgType string, payload interface{}) error {
	select {
	case c.sendChan <- Message{Type: msgType, Payload: payload}:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (s *Server) sendBinary(c *client, data []byte) error {
	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (s *Server) clockMicros() int64 {
	return time.Since(s.clockStart).Microseconds()
}

// decodePayload re-decodes a generic JSON payload into a typed struct
func decodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// CreateAudioChunk builds a binary packet frame:
// [message_type:1][pts_micros:8 big-endian][data:N]
func CreateAudioChunk(timestamp int64, data []byte) []byte {
	chunk := make([]byte, 1+8+len(data))
	chunk[0] = AudioChunkMessageType
	binary.BigEndian.PutUint64(chunk[1:9], uint64(timestamp))
	copy(chunk[9:], data)
	return chunk
}
