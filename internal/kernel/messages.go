package kernel

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// protocolVersion is the Jupyter messaging protocol version spoken on the
// channels endpoint.
const protocolVersion = "5.3"

// Reply message kinds. The set is closed: anything else is ignored.
const (
	typeStream        = "stream"
	typeExecuteResult = "execute_result"
	typeDisplayData   = "display_data"
	typeError         = "error"
	typeStatus        = "status"
)

type messageHeader struct {
	MsgID    string `json:"msg_id"`
	Username string `json:"username"`
	Session  string `json:"session"`
	Date     string `json:"date"`
	MsgType  string `json:"msg_type"`
	Version  string `json:"version"`
}

type executeContent struct {
	Code            string         `json:"code"`
	Silent          bool           `json:"silent"`
	StoreHistory    bool           `json:"store_history"`
	UserExpressions map[string]any `json:"user_expressions"`
	AllowStdin      bool           `json:"allow_stdin"`
	StopOnError     bool           `json:"stop_on_error"`
}

type executeRequest struct {
	Header       messageHeader  `json:"header"`
	ParentHeader struct{}       `json:"parent_header"`
	Metadata     struct{}       `json:"metadata"`
	Content      executeContent `json:"content"`
	Channel      string         `json:"channel"`
}

func newExecuteRequest(msgID, sessionID, code string) executeRequest {
	return executeRequest{
		Header: messageHeader{
			MsgID:    msgID,
			Username: "api",
			Session:  sessionID,
			Date:     time.Now().UTC().Format(time.RFC3339),
			MsgType:  "execute_request",
			Version:  protocolVersion,
		},
		Content: executeContent{
			Code:            code,
			StoreHistory:    true,
			UserExpressions: map[string]any{},
			AllowStdin:      false,
			StopOnError:     true,
		},
		Channel: "shell",
	}
}

// reply is the subset of the incoming envelope the engine interprets. The
// content stays raw so JSON output preserves whatever the kernel sent.
type reply struct {
	MsgType      string `json:"msg_type"`
	ParentHeader struct {
		MsgID string `json:"msg_id"`
	} `json:"parent_header"`
	Content json.RawMessage `json:"content"`
}

type streamContent struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type dataContent struct {
	Data map[string]any `json:"data"`
}

type errorContent struct {
	Name      string   `json:"ename"`
	Value     string   `json:"evalue"`
	Traceback []string `json:"traceback"`
}

type statusContent struct {
	ExecutionState string `json:"execution_state"`
}

// newID returns a fresh 128-bit identifier in hex, the form Jupyter clients
// use for msg_id and session values.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
