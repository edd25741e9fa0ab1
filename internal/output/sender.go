package output

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Sender delivers one item value to the monitoring system.
type Sender interface {
	Send(ctx context.Context, key string, payload []byte) error
}

// StdoutSender writes values for a Zabbix agent UserParameter to read.
// The key is not written.
type StdoutSender struct {
	w io.Writer
}

func NewStdoutSender(w io.Writer) *StdoutSender {
	return &StdoutSender{w: w}
}

func (s *StdoutSender) Send(ctx context.Context, key string, payload []byte) error {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, '\n')
	if _, err := s.w.Write(buf); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	return nil
}

// EncodeJSON returns the compact JSON form of v. HTML escaping is off
// because record fields are already HTML-escaped.
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
