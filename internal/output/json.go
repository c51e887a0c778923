package output

import (
	"encoding/json"
	"io"
)

// ToJSON renders any of the record types as indented JSON.
func ToJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func WriteJSON(w io.Writer, v any) error {
	s, err := ToJSON(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s+"\n")
	return err
}
