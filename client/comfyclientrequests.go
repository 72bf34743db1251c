package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/comfybatch/comfybatch/graphapi"
)

/*
@routes.get("/view")
@routes.get("/system_stats")
@routes.get("/prompt")
@routes.get("/history/{prompt_id}")

@routes.post("/prompt")
*/

// QueuePrompt submits an execution-form graph and returns the submission id
// assigned by the server.
func (c *ComfyClient) QueuePrompt(prompt graphapi.PromptGraph) (string, error) {
	req := graphapi.PromptRequest{
		Prompt:   prompt,
		ClientID: c.clientid,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	resp, err := c.httpclient.Post(fmt.Sprintf("http://%s/prompt", c.serverBaseAddress), "application/json", bytes.NewReader(data))
	if err != nil {
		return "", &TransportError{Op: "queue prompt", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// mmm-k, is it one of these:
		// {"error": {"type": "prompt_no_outputs",
		//				"message": "Prompt has no outputs",
		//				"details": "",
		//				"extra_info": {}
		//			  },
		// "node_errors": []
		// }
		perror := &PromptErrorMessage{}
		if json.Unmarshal(body, perror) == nil && perror.Error.Message != "" {
			return "", &TransportError{Op: "queue prompt", StatusCode: resp.StatusCode, Message: perror.Error.Message}
		}
		return "", &TransportError{Op: "queue prompt", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var queued struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.Unmarshal(body, &queued); err != nil {
		return "", &TransportError{Op: "queue prompt", Err: err}
	}
	if queued.PromptID == "" {
		return "", &TransportError{Op: "queue prompt", Message: "response contained no prompt_id"}
	}
	return queued.PromptID, nil
}

// WaitForCompletion blocks on the event stream until the completion signal
// for the given prompt arrives: an "executing" event with a null node and a
// matching prompt id. Events for other prompts are discarded. There is no
// timeout at this layer; a server that never completes stalls the caller.
func (c *ComfyClient) WaitForCompletion(promptID string) error {
	if !c.IsConnected() {
		return &TransportError{Op: "event stream", Message: "not connected"}
	}

	for {
		data, err := c.webSocket.ReadTextMessage()
		if err != nil {
			return &TransportError{Op: "event stream", Err: err}
		}

		message := &WSStatusMessage{}
		if err := json.Unmarshal(data, message); err != nil {
			slog.Error("Deserializing Status Message:", "error", err)
			continue
		}

		switch message.Type {
		case "status":
			s := message.Data.(*WSMessageDataStatus)
			if c.callbacks != nil && c.callbacks.QueueCountChanged != nil {
				c.callbacks.QueueCountChanged(c, s.Status.ExecInfo.QueueRemaining)
			}
		case "executing":
			s := message.Data.(*WSMessageDataExecuting)
			if s.PromptID != promptID {
				continue
			}
			if s.Node == nil {
				// final node was processed
				return nil
			}
			if c.callbacks != nil && c.callbacks.Executing != nil {
				c.callbacks.Executing(c, *s.Node)
			}
		case "progress":
			s := message.Data.(*WSMessageDataProgress)
			if c.callbacks != nil && c.callbacks.Progress != nil {
				c.callbacks.Progress(c, s.Value, s.Max)
			}
		case "execution_interrupted":
			s := message.Data.(*WSMessageExecutionInterrupted)
			if s.PromptID == promptID {
				return fmt.Errorf("execution interrupted at node %s", s.Node)
			}
		case "execution_error":
			s := message.Data.(*WSMessageExecutionError)
			if s.PromptID == promptID {
				return &ExecutionError{
					PromptID:         s.PromptID,
					NodeID:           s.Node,
					NodeType:         s.NodeType,
					ExceptionType:    s.ExceptionType,
					ExceptionMessage: s.ExceptionMessage,
					Traceback:        s.Traceback,
				}
			}
		}
	}
}

// GetHistory retrieves the per-node outputs recorded for a finished prompt.
func (c *ComfyClient) GetHistory(promptID string) (map[string]HistoryOutputs, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/history/%s", c.serverBaseAddress, promptID))
	if err != nil {
		return nil, &TransportError{Op: "get history", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "get history", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	history := make(map[string]historyEntry)
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, &TransportError{Op: "get history", Err: err}
	}

	entry, ok := history[promptID]
	if !ok {
		return nil, &TransportError{Op: "get history", Message: fmt.Sprintf("no history for prompt %s", promptID)}
	}
	return entry.Outputs, nil
}

// GetImage fetches the bytes of one generated output.
func (c *ComfyClient) GetImage(image_data DataOutput) ([]byte, error) {
	params := url.Values{}
	params.Add("filename", image_data.Filename)
	params.Add("subfolder", image_data.Subfolder)
	params.Add("type", image_data.Type)
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/view?%s", c.serverBaseAddress, params.Encode()))
	if err != nil {
		return nil, &TransportError{Op: "get image", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "get image", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *ComfyClient) GetSystemStats() (*SystemStats, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/system_stats", c.serverBaseAddress))
	if err != nil {
		return nil, &TransportError{Op: "get system stats", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	retv := &SystemStats{}
	if err := json.Unmarshal(body, retv); err != nil {
		return nil, &TransportError{Op: "get system stats", Err: err}
	}
	return retv, nil
}

func (c *ComfyClient) GetQueueExecutionInfo() (*QueueExecInfo, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/prompt", c.serverBaseAddress))
	if err != nil {
		return nil, &TransportError{Op: "get queue info", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	queue_exec := &QueueExecInfo{}
	if err := json.Unmarshal(body, queue_exec); err != nil {
		return nil, &TransportError{Op: "get queue info", Err: err}
	}
	return queue_exec, nil
}
