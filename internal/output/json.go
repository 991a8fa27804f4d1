package output

import (
	"encoding/json"
	"io"

	"github.com/prowlsec/prowl/internal/engine"
)

// WriteJSON writes the domain scan as indented JSON to w.
func WriteJSON(w io.Writer, scan *engine.DomainScan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scan)
}
