package canbus

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type Writer interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

// LogWriter writes candump -l lines: "(seconds.micros) iface ID#DATA".
type LogWriter struct {
	w     io.Writer
	iface string
	now   func() time.Time
}

func NewLogWriter(w io.Writer, iface string) *LogWriter {
	return &LogWriter{w: w, iface: iface, now: time.Now}
}

func (l *LogWriter) WriteFrame(_ context.Context, frame can.Frame) error {
	_, err := fmt.Fprintln(l.w, FormatLogLine(l.now(), l.iface, frame))
	return err
}

func (l *LogWriter) Close() error {
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func FormatLogLine(ts time.Time, iface string, frame can.Frame) string {
	var data strings.Builder
	for _, b := range frame.Data[:frame.Length] {
		fmt.Fprintf(&data, "%02X", b)
	}
	return fmt.Sprintf("(%d.%06d) %s %03X#%s", ts.Unix(), ts.Nanosecond()/1000, iface, frame.ID, data.String())
}

type SocketWriter struct {
	conn net.Conn
	tx   *socketcan.Transmitter
}

func DialSocket(ctx context.Context, iface string) (*SocketWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketWriter{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
	}, nil
}

func (w *SocketWriter) WriteFrame(ctx context.Context, frame can.Frame) error {
	return w.tx.TransmitFrame(ctx, frame)
}

func (w *SocketWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}
