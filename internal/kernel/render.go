package kernel

import (
	"encoding/json"
	"strings"
)

// ConsoleText returns the text a terminal rendering of the output should
// show. Stream outputs render their text verbatim; results and displayed
// payloads prefer the text/plain representation and fall back to the full
// structured payload; errors prefer the traceback and fall back to the raw
// content.
func (o Output) ConsoleText() string {
	switch o.Type {
	case typeStream:
		var c streamContent
		if err := json.Unmarshal(o.Content, &c); err != nil {
			return ""
		}
		return c.Text
	case typeExecuteResult, typeDisplayData:
		var c dataContent
		if err := json.Unmarshal(o.Content, &c); err != nil {
			return string(o.Content)
		}
		if text, ok := c.Data["text/plain"].(string); ok && text != "" {
			return text
		}
		payload, err := json.Marshal(c.Data)
		if err != nil {
			return string(o.Content)
		}
		return string(payload)
	case typeError:
		var c errorContent
		if err := json.Unmarshal(o.Content, &c); err != nil || len(c.Traceback) == 0 {
			return string(o.Content)
		}
		return strings.Join(c.Traceback, "\n")
	default:
		return string(o.Content)
	}
}

// IsStream reports whether the output is console text that should be
// written without a trailing newline.
func (o Output) IsStream() bool { return o.Type == typeStream }
