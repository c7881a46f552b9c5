package notify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/starford/jotter/internal/models"
)

// Decoder reads SSE frames produced by Broker.ServeHTTP.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	return &Decoder{sc: sc}
}

// Next returns the next notification. It returns io.EOF when the stream ends.
// Comment lines and frames without data are skipped.
func (d *Decoder) Next() (models.Notification, error) {
	var data strings.Builder
	for d.sc.Scan() {
		line := d.sc.Text()
		switch {
		case line == "":
			if data.Len() == 0 {
				continue
			}
			var n models.Notification
			if err := json.Unmarshal([]byte(data.String()), &n); err != nil {
				return models.Notification{}, fmt.Errorf("notify: decode frame: %w", err)
			}
			return n, nil
		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive.
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := d.sc.Err(); err != nil {
		return models.Notification{}, err
	}
	return models.Notification{}, io.EOF
}
