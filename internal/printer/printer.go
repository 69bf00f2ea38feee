// Package printer sends receipt documents to an ESC/POS thermal printer.
package printer

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/kenshaw/escpos"

	"github.com/choripam/printd/internal/receipt"
)

// Printer executes one physical print job. Implementations must treat
// each call as a discrete job: acquire the device, print, cut, and
// release on every exit path. Print jobs never run concurrently; the
// engine serializes them.
type Printer interface {
	Print(ctx context.Context, doc receipt.Document) error
}

// Network prints over a raw TCP socket (port 9100 on most network
// thermal printers). The connection is dialed per job and always closed,
// so a wedged job cannot hold the device across cycles.
type Network struct {
	addr        string
	dialTimeout time.Duration
}

// NewNetwork creates a driver for the printer at addr (host:port).
func NewNetwork(addr string, dialTimeout time.Duration) *Network {
	return &Network{addr: addr, dialTimeout: dialTimeout}
}

// Print encodes the document as ESC/POS and sends it, terminated by a
// cut. The context deadline, when present, bounds the whole job.
func (n *Network) Print(ctx context.Context, doc receipt.Document) error {
	dialer := net.Dialer{Timeout: n.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("connect printer %s: %w", n.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set printer deadline: %w", err)
		}
	}

	p := escpos.New(conn)
	p.Init()
	for _, line := range doc.Lines {
		p.SetAlign(line.Align)
		if line.Font != "" {
			p.SetFont(line.Font)
		}
		p.SetFontSize(line.Width, line.Height)
		if _, err := p.Write(line.Text); err != nil {
			return fmt.Errorf("write to printer %s: %w", n.addr, err)
		}
		p.Linefeed()
	}
	p.Cut()
	p.End()
	return nil
}
