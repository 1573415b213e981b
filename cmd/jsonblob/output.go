package main

import (
	"encoding/json"
	"fmt"
	"os"
)

func writeJSON(payload any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

// writeDocument prints a stored document verbatim with a trailing newline.
func writeDocument(body string) error {
	if _, err := fmt.Fprint(os.Stdout, body); err != nil {
		return err
	}
	if len(body) == 0 || body[len(body)-1] != '\n' {
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return nil
}
