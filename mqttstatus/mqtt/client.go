//go:build tinygo

package mqtt

import (
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"runtime"
	"time"

	"github.com/harveysanders/picostatus/mqttstatus/cyw43439"
	"github.com/harveysanders/picostatus/statusled"
	"github.com/soypat/lneto/tcp"
	mqtt "github.com/soypat/natiu-mqtt"
)

const (
	pollTime      = 5 * time.Millisecond
	redialWait    = 2 * time.Second
	connectPolls  = 50
	idleReadLimit = 200 * time.Millisecond
)

// Run connects to the broker at addr ("host:port") and delivers status
// words until the process stops. Connection failures are retried; only
// address and configuration errors are returned.
func (s *Subscriber) Run(stack *cyw43439.Stack, addr string) error {
	s.setDefaults()
	host, port, err := splitHostPort(addr)
	if err != nil {
		return errors.New("mqtt: " + err.Error())
	}

	lnetoStack := stack.Net()
	rstack := lnetoStack.StackRetrying(pollTime)

	brokerAddr, err := netip.ParseAddr(host)
	if err != nil {
		s.Logger.Info("dns:resolving", slog.String("host", host))
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return errors.New("mqtt: dns lookup for " + host + ":" + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("mqtt: dns lookup for " + host + ": no addresses returned")
		}
		brokerAddr = addrs[0]
	}
	server := netip.AddrPortFrom(brokerAddr, port)
	topic := []byte(SetTopic(s.ID))

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 512)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			payload, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			w, err := DecodePayload(payload)
			if err != nil {
				s.Logger.Warn("mqtt:bad-payload",
					slog.String("topic", string(varPub.TopicName)),
					slog.String("err", err.Error()),
				)
				return nil
			}
			s.Logger.Info("mqtt:status", slog.String("status", statusled.FormatWord(w)))
			if s.OnStatus != nil {
				s.OnStatus(w)
			}
			return nil
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(s.ID))
	if s.Username != "" {
		varconn.Username = []byte(s.Username)
		if s.Password != "" {
			varconn.Password = []byte(s.Password)
		}
	}
	client := mqtt.NewClient(cfg)

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, s.TCPBufSize),
		TxBuf:             make([]byte, s.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errors.New("mqtt: tcp configure:" + err.Error())
	}

	closeConn := func(reason string) {
		s.Logger.Error("tcp:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	heartbeat := time.NewTicker(s.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		s.setState(StateDialing)
		localPort := uint16(lnetoStack.Prand32()>>17) + 1024
		err = rstack.DoDialTCP(&conn, localPort, server, 10*time.Second, 3)
		if err != nil {
			closeConn("dial failed: " + err.Error())
			s.setState(StateDisconnected)
			time.Sleep(redialWait)
			continue
		}

		conn.SetDeadline(time.Now().Add(s.Timeout))
		if err = client.StartConnect(&conn, &varconn); err != nil {
			closeConn("connect failed: " + err.Error())
			s.setState(StateDisconnected)
			continue
		}
		for i := 0; i < connectPolls && !client.IsConnected(); i++ {
			time.Sleep(100 * time.Millisecond)
			if err = client.HandleNext(); err != nil {
				s.Logger.Debug("mqtt:handle-next", slog.String("err", err.Error()))
			}
		}
		if !client.IsConnected() {
			closeConn("connect timed out")
			s.setState(StateDisconnected)
			continue
		}

		conn.SetDeadline(time.Now().Add(s.Timeout))
		err = client.StartSubscribe(mqtt.VariablesSubscribe{
			PacketIdentifier: uint16(lnetoStack.Prand32()),
			TopicFilters: []mqtt.SubscribeRequest{
				{TopicFilter: topic, QoS: mqtt.QoS0},
			},
		})
		if err != nil {
			closeConn("subscribe failed: " + err.Error())
			s.setState(StateDisconnected)
			continue
		}
		s.setState(StateConnected)

		for client.IsConnected() {
			select {
			case <-heartbeat.C:
				conn.SetDeadline(time.Now().Add(s.Timeout))
				if err := client.StartPing(); err != nil {
					s.Logger.Error("mqtt:ping-failed", slog.String("err", err.Error()))
				}
			default:
			}
			// Short read deadline so the heartbeat keeps getting a turn.
			conn.SetDeadline(time.Now().Add(idleReadLimit))
			if err := client.HandleNext(); err != nil {
				s.Logger.Debug("mqtt:handle-next", slog.String("err", err.Error()))
			}
			// TinyGo runs goroutines on one core; let the LED and LCD run.
			runtime.Gosched()
		}

		s.Logger.Error("mqtt:disconnected", slog.Any("reason", client.Err()))
		closeConn("disconnected")
		s.setState(StateDisconnected)
	}
}
