package client

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// Callbacks are optional notification hooks invoked while waiting on the
// event stream. All fields may be nil.
type Callbacks struct {
	// QueueCountChanged reports the server's remaining queue size.
	QueueCountChanged func(*ComfyClient, int)
	// Executing reports the node id currently being executed.
	Executing func(*ComfyClient, string)
	// Progress reports node progress as value out of max.
	Progress func(*ComfyClient, int, int)
}

// ComfyClient is the top level object that allows for interaction with the
// ComfyUI backend. One client holds one websocket session; the session is
// shared across all prompts queued through it.
type ComfyClient struct {
	serverBaseAddress string
	serverAddress     string
	serverPort        int
	clientid          string
	callbacks         *Callbacks
	httpclient        *http.Client
	webSocket         *WebSocketConnection
}

// NewComfyClient creates a new instance of a ComfyUI client
func NewComfyClient(server_address string, server_port int, callbacks *Callbacks) *ComfyClient {
	sbaseaddr := server_address + ":" + strconv.Itoa(server_port)
	cid := uuid.New().String()
	retv := &ComfyClient{
		serverBaseAddress: sbaseaddr,
		serverAddress:     server_address,
		serverPort:        server_port,
		clientid:          cid,
		callbacks:         callbacks,
		httpclient:        &http.Client{},
	}
	return retv
}

// ClientID returns the unique client ID for the connection to the ComfyUI backend
func (c *ComfyClient) ClientID() string {
	return c.clientid
}

// return the underlying http client
func (c *ComfyClient) HttpClient() *http.Client {
	return c.httpclient
}

// set the underlying http client
func (c *ComfyClient) SetHttpClient(client *http.Client) {
	c.httpclient = client
}

// Connect establishes the websocket session used for execution events.
func (c *ComfyClient) Connect() error {
	if c.IsConnected() {
		return nil
	}

	ws := &WebSocketConnection{
		WebSocketURL: fmt.Sprintf("ws://%s/ws?clientId=%s", c.serverBaseAddress, c.clientid),
	}
	if err := ws.Connect(); err != nil {
		return &TransportError{Op: "connect", Err: err}
	}
	c.webSocket = ws
	return nil
}

// IsConnected returns true if the client's websocket session is established
func (c *ComfyClient) IsConnected() bool {
	return c.webSocket != nil && c.webSocket.Conn != nil
}

// Close releases the websocket session. Closing an unconnected client is a
// no-op so teardown can always be deferred.
func (c *ComfyClient) Close() error {
	if c.webSocket == nil {
		return nil
	}
	err := c.webSocket.Close()
	c.webSocket = nil
	return err
}
