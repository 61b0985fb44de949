// ABOUTME: JSON control messages exchanged with stream listeners
// ABOUTME: Handshake, stream format announcement and clock sync payloads
package stream

// Message is the envelope for every text frame
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Message types
const (
	TypeClientHello = "client/hello"
	TypeClientTime  = "client/time"
	TypeServerHello = "server/hello"
	TypeServerTime  = "server/time"
	TypeServerError = "server/error"
	TypeStreamStart = "stream/start"
	TypeStreamEnd   = "stream/end"
)

// ClientHello is sent by listeners to initiate the handshake
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerHello answers a valid client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Product  string `json:"product"`
	Build    string `json:"build"`
}

// StreamStart describes the encoded stream that follows.
// CodecHeader is the encoder's extra data; encoding/json base64-encodes it.
type StreamStart struct {
	Codec       string `json:"codec"`
	SampleRate  int    `json:"sample_rate"`
	Channels    int    `json:"channels"`
	BitDepth    int    `json:"bit_depth"`
	CodecHeader []byte `json:"codec_header,omitempty"`
}

// ServerError is sent right before the server drops a connection
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ClientTime carries the listener's transmit timestamp in microseconds
type ClientTime struct {
	ClientTransmitted int64 `json:"client_transmitted"`
}

// ServerTime is the response to client/time
type ServerTime struct {
	ClientTransmitted int64 `json:"client_transmitted"`
	ServerReceived    int64 `json:"server_received"`
	ServerTransmitted int64 `json:"server_transmitted"`
}
