//go:build tinygo

// mqttstatus runs on a Pico W. The status LED shows network progress until
// the broker publishes a status word to statusled/<id>/set; from then on the
// LED shows whatever the broker last sent. An optional 16x2 LCD mirrors it.
package main

import (
	"errors"
	"log/slog"
	"machine"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/harveysanders/picostatus/mqttstatus/cyw43439"
	"github.com/harveysanders/picostatus/mqttstatus/lcd"
	"github.com/harveysanders/picostatus/mqttstatus/mqtt"
	"github.com/harveysanders/picostatus/statusled"
	"github.com/harveysanders/picostatus/statusled/pico"
	"tinygo.org/x/drivers/hd44780i2c"
)

const (
	clientID  = "pico-status"
	stackIdle = 5 * time.Millisecond
)

// Set with -ldflags "-X main.brokerAddr=10.0.0.9:1883".
var brokerAddr = "10.0.0.9:1883"

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	led := pico.EnableStatusLED(statusled.WithLogger(logger))

	lcdMessages := make(chan lcd.Message, 4)
	display, err := configureLCD(machine.I2C0)
	if err != nil {
		// The LCD is optional; keep draining so senders never notice.
		logger.Warn("lcd:unavailable", slog.String("err", err.Error()))
		go func() {
			for range lcdMessages {
			}
		}()
	} else {
		go lcd.NewHandler(display, lcdMessages, logger).Run()
	}

	// remote is set once the broker has sent a status. It outranks the
	// connection status while connected.
	var remote atomic.Bool
	show := func(note string, s statusled.Status) {
		led.Set(s)
		lcd.Offer(lcdMessages, lcd.StatusMessage(note, s))
	}

	stack, err := cyw43439.Join(cyw43439.Config{
		Hostname:    clientID,
		MaxTCPConns: 1,
		Logger:      logger,
		OnJoinAttempt: func(attempt int) {
			show("WiFi joining", mqtt.StateJoining.Status())
		},
	})
	if err != nil {
		fail(logger, led, "wifi setup", err)
	}
	go stack.PollForever(stackIdle)

	if err := stack.DHCP(netip.Addr{}); err != nil {
		fail(logger, led, "dhcp", err)
	}

	sub := mqtt.Subscriber{
		ID:                clientID,
		Timeout:           5 * time.Second,
		TCPBufSize:        2030, // MTU - ethhdr - iphdr - tcphdr
		HeartbeatInterval: 30 * time.Second,
		Logger:            logger,
		OnStatus: func(w statusled.Word) {
			remote.Store(true)
			show("MQTT status", statusled.Decode(w))
		},
		OnState: func(st mqtt.ConnState) {
			if st == mqtt.StateConnected && remote.Load() {
				return
			}
			if st != mqtt.StateConnected {
				remote.Store(false)
			}
			show("MQTT "+st.String(), st.Status())
		},
	}
	if err := sub.Run(stack, brokerAddr); err != nil {
		fail(logger, led, "mqtt", err)
	}
}

// configureLCD configures the I2C peripheral on GP4/GP5 and attempts to
// initialize the HD44780 LCD display on the common addresses (0x27, 0x3F).
func configureLCD(i2c *machine.I2C) (*hd44780i2c.Device, error) {
	err := i2c.Configure(machine.I2CConfig{
		SDA: machine.GP4,
		SCL: machine.GP5,
	})
	if err != nil {
		return nil, errors.New("configure i2c:" + err.Error())
	}
	for _, addr := range []uint8{0x27, 0x3F} {
		if err := i2c.Tx(uint16(addr), nil, []byte{0}); err != nil {
			continue
		}
		dev := hd44780i2c.New(i2c, addr)
		dev.Configure(hd44780i2c.Config{
			Width:  16,
			Height: 2,
		})
		dev.ClearDisplay()
		return &dev, nil
	}
	return nil, errors.New("LCD not found on addresses: 0x27, 0x3f")
}

// fail shows a solid red LED and prints err to serial @ 1hz. It blocks forever.
func fail(logger *slog.Logger, led *statusled.LED, msg string, err error) {
	led.Set(statusled.Status{Color: statusled.Red, Mode: statusled.Solid})
	for {
		logger.Error(msg, slog.String("reason", err.Error()))
		time.Sleep(time.Second)
	}
}
