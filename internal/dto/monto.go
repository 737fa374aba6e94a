package dto

import (
	"bytes"
	"encoding/json"
)

// MontoEntrada carries a monetary amount exactly as the operator typed it.
// It accepts a JSON string or a JSON number so that parsing (and the
// "monto inválido" error) happens in the service, not in the JSON binder.
type MontoEntrada string

func (m *MontoEntrada) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MontoEntrada(s)
		return nil
	}
	*m = MontoEntrada(data)
	return nil
}

func (m MontoEntrada) String() string { return string(m) }
