// Package kernel drives one execute exchange against a Jupyter kernel's
// WebSocket channels endpoint: it sends a correlated execute_request,
// demultiplexes the interleaved reply stream, and aggregates the replies
// attributable to the request into an ordered outcome.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nbkit/jkexec/internal/jupyter"
)

// ChannelError indicates the duplex channel could not be established at
// all; no execution is possible. Callers map this to a distinct exit code.
type ChannelError struct {
	URL string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("kernel channel unavailable at %s: %v", e.URL, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Output is one reply kept for the caller, in arrival order. Content is the
// kernel's structured content, untouched.
type Output struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Outcome is the aggregated result of one execute exchange. Status is
// "error" iff at least one error reply was attributed to the request.
type Outcome struct {
	KernelID string   `json:"kernel_id"`
	MsgID    string   `json:"msg_id"`
	Status   string   `json:"status"`
	Outputs  []Output `json:"outputs"`
}

// Sink receives kept outputs as they arrive, for incremental console
// rendering. A nil sink collects silently.
type Sink interface {
	Emit(Output)
}

// Options configures one execute exchange.
type Options struct {
	BaseURL  string
	Token    string
	KernelID string
	Code     string

	// Timeout bounds every receive on the channel. Expiry is fatal for the
	// whole request.
	Timeout time.Duration

	// ResultOnly drops stream and display_data replies, keeping computed
	// results and errors.
	ResultOnly bool

	Sink   Sink
	Logger *slog.Logger
}

// ChannelsURL derives the WebSocket URL for a kernel's channels endpoint
// from the server base URL, preserving any base path and re-appending the
// token.
func ChannelsURL(baseURL, kernelID, token string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("base url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	case "http":
		parsed.Scheme = "ws"
	default:
		return "", fmt.Errorf("base url: unsupported scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/api/kernels/" + kernelID + "/channels"
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return jupyter.WithToken(parsed.String(), token), nil
}

// Execute runs one code snippet on the kernel and reads replies until the
// kernel reports idle for this request. Replies whose correlation parent is
// not the outgoing msg_id are foreign traffic and are discarded; the channel
// may carry messages for other clients of the same kernel.
func Execute(ctx context.Context, opts Options) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wsURL, err := ChannelsURL(opts.BaseURL, opts.KernelID, opts.Token)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.Timeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %s)", err, resp.Status)
		}
		return nil, &ChannelError{URL: wsURL, Err: err}
	}
	defer conn.Close()

	msgID := newID()
	sessionID := newID()
	logger.Debug("sending execute_request", "kernel_id", opts.KernelID, "msg_id", msgID)

	if err := conn.WriteJSON(newExecuteRequest(msgID, sessionID, opts.Code)); err != nil {
		return nil, fmt.Errorf("send execute request: %w", err)
	}

	outcome := &Outcome{
		KernelID: opts.KernelID,
		MsgID:    msgID,
		Status:   "ok",
		Outputs:  []Output{},
	}

	for {
		if opts.Timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(opts.Timeout)); err != nil {
				return nil, fmt.Errorf("set read deadline: %w", err)
			}
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read kernel reply: %w", err)
		}
		var in reply
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("decode kernel reply: %w", err)
		}

		// Status messages are inspected regardless of parent so the loop can
		// observe kernel state; everything else must correlate to our request.
		if in.MsgType != typeStatus && in.ParentHeader.MsgID != msgID {
			continue
		}

		switch in.MsgType {
		case typeStream:
			if opts.ResultOnly {
				continue
			}
			keep(outcome, opts.Sink, typeStream, in.Content)
		case typeExecuteResult, typeDisplayData:
			if opts.ResultOnly && in.MsgType != typeExecuteResult {
				continue
			}
			keep(outcome, opts.Sink, in.MsgType, in.Content)
		case typeError:
			outcome.Status = "error"
			keep(outcome, opts.Sink, typeError, in.Content)
		case typeStatus:
			var status statusContent
			if err := json.Unmarshal(in.Content, &status); err != nil {
				continue
			}
			if status.ExecutionState == "idle" && in.ParentHeader.MsgID == msgID {
				logger.Debug("kernel idle", "msg_id", msgID, "outputs", len(outcome.Outputs))
				return outcome, nil
			}
		default:
			// Unknown reply kinds are ignored, not fatal.
		}
	}
}

func keep(outcome *Outcome, sink Sink, msgType string, content json.RawMessage) {
	out := Output{Type: msgType, Content: append(json.RawMessage(nil), content...)}
	outcome.Outputs = append(outcome.Outputs, out)
	if sink != nil {
		sink.Emit(out)
	}
}
