package main

import (
	"encoding/json"
	"io"
	"os"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeOutput writes payload to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, payload []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
