package lcd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harveysanders/picostatus/statusled"
)

type fakeDisplay struct {
	rows   [rows]string
	cursor uint8
	clears int
}

func (d *fakeDisplay) ClearDisplay() {
	d.clears++
	d.rows = [rows]string{}
}

func (d *fakeDisplay) SetCursor(x, y uint8) { d.cursor = y }

func (d *fakeDisplay) Print(data []byte) { d.rows[d.cursor] += string(data) }

func TestHandlerTruncatesLines(t *testing.T) {
	dev := &fakeDisplay{}
	msgs := make(chan Message, 2)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.True(t, Offer(msgs, StatusMessage("MQTT connected", statusled.Decode(statusled.WordMagenta|statusled.WordLongBlink))))
	close(msgs)
	NewHandler(dev, msgs, logger).Run()

	assert.Equal(t, 1, dev.clears)
	assert.Equal(t, "MQTT connected", dev.rows[0])
	assert.Equal(t, "magenta|longblin", dev.rows[1])
}

func TestSendDropsWhenFull(t *testing.T) {
	msgs := make(chan Message, 1)

	assert.True(t, Send(msgs, "a", "b"))
	assert.False(t, Send(msgs, "c", "d"))

	got := <-msgs
	assert.Equal(t, "a", string(got.Line1))
}
