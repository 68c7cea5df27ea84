package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// Console writes the human-readable feed view. Every line the client prints
// on stdout goes through here, so the formats live in one place.
type Console struct {
	out io.Writer
}

// NewConsole constructs a console view writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Connecting announces a connection attempt.
func (c *Console) Connecting(url string) {
	fmt.Fprintf(c.out, "Connecting to %s...\n", url)
}

// Connected announces a successful handshake.
func (c *Console) Connected() {
	fmt.Fprintf(c.out, "Connected! Receiving data...\n\n")
}

// Metrics renders one top-of-book line.
func (c *Console) Metrics(bid, ask, spreadBps, vwap float64) {
	fmt.Fprintf(c.out, "BID: %s | ASK: %s | SPREAD: %sbps | VWAP: %s\n",
		fixed2(bid), fixed2(ask), fixed2(spreadBps), fixed2(vwap))
}

// Alert renders one whale-trade line. Quantity keeps its shortest form so
// whole lots print without a decimal tail.
func (c *Console) Alert(side string, quantity, price, sigma float64) {
	fmt.Fprintf(c.out, "WHALE %s: %s @ %s (%s sigma)\n",
		side, strconv.FormatFloat(quantity, 'f', -1, 64), fixed2(price), fixed1(sigma))
}

// InvalidFrame reports a frame that failed to decode, echoing the raw text.
func (c *Console) InvalidFrame(raw string) {
	fmt.Fprintf(c.out, "Invalid JSON: %s\n", raw)
}

// ConnectFailed reports a refused connection.
func (c *Console) ConnectFailed(url string) {
	fmt.Fprintf(c.out, "Error: Could not connect to %s\n", url)
	fmt.Fprintln(c.out, "Make sure Titan is running.")
}

// Disconnected announces the end of the session.
func (c *Console) Disconnected() {
	fmt.Fprintln(c.out, "Disconnected.")
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func fixed1(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
