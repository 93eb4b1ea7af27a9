package websocket

import "time"

// Envelope — конверт сообщения с типом, чтобы фронтенд знал, что делать.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
