package render

import (
	"encoding/json"
	"io"

	"filetree/internal/tree"
)

// WriteJSON writes one JSON object per line.
func WriteJSON(w io.Writer, lines []tree.Line) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}
