package mqtt

import (
	"io"
	"log/slog"
	"time"

	"github.com/harveysanders/picostatus/statusled"
)

// Subscriber receives status words for one device. A nil Logger discards.
type Subscriber struct {
	ID                string
	Timeout           time.Duration
	TCPBufSize        int
	HeartbeatInterval time.Duration
	Username          string // MQTT broker username (optional)
	Password          string // MQTT broker password (optional, requires Username)
	Logger            *slog.Logger

	// OnStatus is called with every status word received on SetTopic(ID).
	OnStatus func(statusled.Word)
	// OnState is called whenever the session changes state.
	OnState func(ConnState)
}

func (s *Subscriber) setDefaults() {
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
}

func (s *Subscriber) setState(st ConnState) {
	s.setDefaults()
	s.Logger.Info("mqtt:state", slog.String("state", st.String()))
	if s.OnState != nil {
		s.OnState(st)
	}
}
