package ui

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderJSON pretty-prints and syntax-highlights a raw JSON payload for
// the document detail pane. Invalid JSON is returned as-is so the user
// still sees what the server sent.
func RenderJSON(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}

	style := "monokai"
	if CurrentTheme().Name == "Light" {
		style = "friendly"
	}

	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, pretty.String(), "json", "terminal256", style); err != nil {
		return pretty.String()
	}
	return highlighted.String()
}
