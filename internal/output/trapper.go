package output

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	headerMagic  = "ZBXD"
	headerFlags  = 0x01
	headerLength = 13
	maxReplySize = 1 << 20
	sendTimeout  = 10 * time.Second
)

type senderItem struct {
	Host  string `json:"host"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type senderRequest struct {
	Request string       `json:"request"`
	Data    []senderItem `json:"data"`
}

type senderResponse struct {
	Response string `json:"response"`
	Info     string `json:"info"`
}

var failedRe = regexp.MustCompile(`failed:\s*(\d+)`)

// TrapperSender pushes values to Zabbix trapper items with the sender
// protocol, one connection per value.
type TrapperSender struct {
	address string
	host    string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewTrapperSender(server string, port int, host string, logger zerolog.Logger) *TrapperSender {
	return &TrapperSender{
		address: net.JoinHostPort(server, strconv.Itoa(port)),
		host:    host,
		timeout: sendTimeout,
		logger:  logger.With().Str("component", "zabbix_sender").Logger(),
	}
}

func (s *TrapperSender) Send(ctx context.Context, key string, payload []byte) error {
	body, err := json.Marshal(senderRequest{
		Request: "sender data",
		Data:    []senderItem{{Host: s.host, Key: key, Value: string(payload)}},
	})
	if err != nil {
		return errors.Wrap(err, "encoding sender request")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "zabbix sender dial %s", s.address)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(frame(body)); err != nil {
		return errors.Wrap(err, "zabbix sender write")
	}

	reply, err := readFrame(conn)
	if err != nil {
		return errors.Wrap(err, "zabbix sender read")
	}
	var resp senderResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return errors.Wrap(err, "zabbix sender reply")
	}
	if resp.Response != "success" {
		return errors.Errorf("zabbix server rejected %s: %s %s", key, resp.Response, resp.Info)
	}
	if m := failedRe.FindStringSubmatch(resp.Info); m != nil && m[1] != "0" {
		return errors.Errorf("zabbix server failed to process %s: %s", key, resp.Info)
	}
	s.logger.Debug().Str("key", key).Str("info", resp.Info).Msg("value sent")
	return nil
}

func frame(body []byte) []byte {
	buf := make([]byte, headerLength, headerLength+len(body))
	copy(buf, headerMagic)
	buf[4] = headerFlags
	binary.LittleEndian.PutUint32(buf[5:9], uint32(len(body)))
	// buf[9:13] is the reserved field and stays zero.
	return append(buf, body...)
}

func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, headerLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if string(header[:4]) != headerMagic {
		return nil, fmt.Errorf("bad header %q", header[:4])
	}
	size := binary.LittleEndian.Uint32(header[5:9])
	if size > maxReplySize {
		return nil, fmt.Errorf("reply of %d bytes exceeds limit", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
