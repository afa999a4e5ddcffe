// Package lcd mirrors the firmware's state on a 16x2 HD44780 display.
//
// Messages go through a channel so network code never blocks on the I2C bus:
//
//	lcdMessages := make(chan lcd.Message, 4)
//	go lcd.NewHandler(&device, lcdMessages, logger).Run()
//	lcd.Send(lcdMessages, "MQTT", "connected")
package lcd

import (
	"log/slog"

	"github.com/harveysanders/picostatus/statusled"
)

const (
	rows    = 2
	columns = 16
)

// Display is the part of hd44780i2c.Device the handler uses.
type Display interface {
	ClearDisplay()
	SetCursor(x, y uint8)
	Print(data []byte)
}

// Message represents a two-line LCD message.
type Message struct {
	Line1 []byte
	Line2 []byte
}

// StatusMessage shows note on the first line and the LED status on the second.
func StatusMessage(note string, s statusled.Status) Message {
	return Message{
		Line1: []byte(note),
		Line2: []byte(s.String()),
	}
}

// Send queues a message without blocking. If the queue is full the message
// is dropped; the display only ever needs the latest state.
func Send(messages chan<- Message, line1, line2 string) bool {
	return Offer(messages, Message{Line1: []byte(line1), Line2: []byte(line2)})
}

// Offer queues msg without blocking and reports whether it was queued.
func Offer(messages chan<- Message, msg Message) bool {
	select {
	case messages <- msg:
		return true
	default:
		return false
	}
}

// Handler processes LCD messages from a channel.
type Handler struct {
	device   Display
	messages <-chan Message
	logger   *slog.Logger
}

// NewHandler creates a new 16x2 LCD message handler.
func NewHandler(device Display, messages <-chan Message, logger *slog.Logger) *Handler {
	return &Handler{
		device:   device,
		messages: messages,
		logger:   logger,
	}
}

// Run displays messages until the channel is closed. Run it on its own goroutine.
func (h *Handler) Run() {
	for msg := range h.messages {
		h.display(msg)
	}
	h.logger.Debug("lcd:stopped")
}

func (h *Handler) display(msg Message) {
	h.device.ClearDisplay()
	for row, line := range [rows][]byte{msg.Line1, msg.Line2} {
		h.device.SetCursor(0, uint8(row))
		// Truncate in-place, no allocation
		if len(line) > columns {
			line = line[:columns]
		}
		h.device.Print(line)
	}
}
