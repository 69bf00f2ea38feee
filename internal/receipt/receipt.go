// Package receipt builds the text documents sent to the thermal printer.
//
// A Document is an abstract receipt: aligned, scaled text lines terminated
// by a paper cut. Building documents as values keeps the layouts pure and
// testable; the ESC/POS encoding lives in internal/printer.
package receipt

import (
	"fmt"
	"strings"

	"github.com/choripam/printd/internal/order"
)

// Alignment values understood by the printer driver.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
)

// Line is one printed line: alignment, font, scale, and literal text.
type Line struct {
	Align  string
	Font   string // "A" (default) or "B" (condensed, used for headers)
	Width  uint8  // horizontal scale, 1 or 2
	Height uint8  // vertical scale, 1 or 2
	Text   string
}

// Document is an ordered sequence of lines, terminated by a cut.
type Document struct {
	Lines []Line
}

// Render returns the plain-text rendering of the document, one line per
// printed line. Used by golden tests and debug logging.
func (d Document) Render() string {
	var b strings.Builder
	for _, l := range d.Lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func header(text string) Line {
	return Line{Align: AlignCenter, Font: "B", Width: 2, Height: 2, Text: text}
}

func body(text string) Line {
	return Line{Align: AlignLeft, Font: "A", Width: 1, Height: 1, Text: text}
}

const rule = "--------------------------------"

// Customer builds the customer-facing receipt: products with prices and
// the order total. modified switches the header line, nothing else.
func Customer(o order.Order, modified bool) Document {
	title := "NUEVO PEDIDO"
	if modified {
		title = "MODIFICACION DE PEDIDO"
	}

	lines := []Line{
		header(title),
		header("----------------"),
		body(fmt.Sprintf("Pedido #: %s", o.ID)),
		body(fmt.Sprintf("Cliente: %s", o.CustomerName)),
		body(rule),
		body("PRODUCTO         CANT.   PRECIO"),
		body(rule),
	}
	for _, p := range o.Products {
		lines = append(lines, body(fmt.Sprintf("%-15s %5d   %8s", p.Name, p.Quantity, p.Price.StringFixed(2))))
	}
	lines = append(lines,
		body(rule),
		body(fmt.Sprintf("TOTAL:          %10s COP", o.Total.StringFixed(2))),
		body(rule),
		body(""),
	)
	return Document{Lines: lines}
}

// Kitchen builds the kitchen ticket: table and quantities only, no prices
// and no total.
func Kitchen(o order.Order, modified bool) Document {
	title := "ORDEN DE COCINA"
	if modified {
		title = "MODIFICACION DE PEDIDO"
	}

	lines := []Line{
		header(title),
		header("----------------"),
		body(fmt.Sprintf("Pedido #: %s", o.ID)),
		body(fmt.Sprintf("Mesa/Cliente: %s", o.Table)),
		body(rule),
		body("PRODUCTO         CANT."),
		body(rule),
	}
	for _, p := range o.Products {
		lines = append(lines, body(fmt.Sprintf("%-15s %5d", p.Name, p.Quantity)))
	}
	lines = append(lines,
		body(rule),
		body(""),
	)
	return Document{Lines: lines}
}

// Separator builds the blank page printed between the kitchen ticket and
// the customer receipt so the two can be torn apart.
func Separator() Document {
	return Document{Lines: []Line{
		body(""),
		body("================================"),
		body(""),
	}}
}
