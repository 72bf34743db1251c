package client

import (
	"github.com/gorilla/websocket"
)

// WebSocketConnection is a thin wrapper over the gorilla websocket
// connection to the ComfyUI event stream. Reads are synchronous; only one
// prompt is ever in flight, so no reader goroutine is needed.
type WebSocketConnection struct {
	WebSocketURL string
	Conn         *websocket.Conn
	Dialer       websocket.Dialer
}

func (w *WebSocketConnection) Connect() error {
	conn, _, err := w.Dialer.Dial(w.WebSocketURL, nil)
	if err != nil {
		return err
	}

	w.Conn = conn
	return nil
}

// ReadTextMessage blocks until the next text frame arrives. Binary frames
// (image previews) are discarded.
func (w *WebSocketConnection) ReadTextMessage() ([]byte, error) {
	for {
		msgType, message, err := w.Conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return message, nil
	}
}

func (w *WebSocketConnection) Close() error {
	if w.Conn == nil {
		return nil
	}
	err := w.Conn.Close()
	w.Conn = nil
	return err
}
