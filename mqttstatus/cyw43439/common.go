//go:build tinygo

// Package cyw43439 brings up the Pico W radio and an lneto TCP/IP stack on
// top of it, so the status firmware can reach its MQTT broker.
//
// The join/DHCP sequence follows the soypat/cyw43439 examples:
// https://github.com/soypat/cyw43439/tree/main/examples/common
package cyw43439

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"
)

const (
	mtu           = cyw43439.MTU
	joinRetryWait = 5 * time.Second
	dhcpPoll      = 50 * time.Millisecond
)

// Set with -ldflags "-X github.com/harveysanders/picostatus/mqttstatus/cyw43439.ssid=..."
var (
	ssid string
	pass string
)

// Config describes how to join the network.
type Config struct {
	// SSID and Password of the WiFi network. Empty fields fall back to the
	// values set at link time. An empty password joins an open network.
	SSID     string
	Password string
	// Hostname announced over DHCP. Required.
	Hostname string
	// MaxTCPConns is the number of TCP connections the stack can hold. Minimum 1.
	MaxTCPConns int
	// StaticAddr is used if DHCP does not complete. Optional.
	StaticAddr netip.Addr
	// OnJoinAttempt is called before every join attempt with the attempt
	// number, starting at 1. The firmware uses it to update the status LED.
	OnJoinAttempt func(attempt int)
	Logger        *slog.Logger
}

// Stack is a joined CYW43439 device and its lneto stack.
type Stack struct {
	s       xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	sendbuf []byte
}

// Join initializes the radio and blocks until it has joined the network.
// Join failures are retried forever; only device and stack setup errors are
// returned.
func Join(cfg Config) (*Stack, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("cyw43439: empty hostname")
	}
	if cfg.SSID == "" {
		cfg.SSID, cfg.Password = ssid, pass
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)
	if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
		return nil, errors.New("cyw43439: init:" + err.Error())
	}
	logger.Info("wifi:init", slog.Duration("took", time.Since(start)))

	for attempt := 1; ; attempt++ {
		if cfg.OnJoinAttempt != nil {
			cfg.OnJoinAttempt(attempt)
		}
		logger.Info("wifi:joining", slog.String("ssid", cfg.SSID), slog.Int("attempt", attempt))
		err := dev.JoinWPA2(cfg.SSID, cfg.Password)
		if err == nil {
			break
		}
		logger.Error("wifi:join-failed", slog.String("err", err.Error()))
		time.Sleep(joinRetryWait)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("cyw43439: hardware address:" + err.Error())
	}
	logger.Info("wifi:joined", slog.String("mac", net.HardwareAddr(mac[:]).String()))

	stack := &Stack{
		dev:     dev,
		log:     logger,
		sendbuf: make([]byte, mtu),
	}
	err = stack.s.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     max(cfg.MaxTCPConns, 1),
		RandSeed:        time.Since(start).Nanoseconds(),
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("cyw43439: stack reset:" + err.Error())
	}
	dev.RecvEthHandle(func(pkt []byte) error {
		return stack.s.Demux(pkt, 0)
	})
	return stack, nil
}

// DHCP requests an address. If DHCP fails and static is a usable address,
// the stack falls back to it.
func (s *Stack) DHCP(static netip.Addr) error {
	requested := static
	if !requested.IsValid() {
		requested = netip.AddrFrom4([4]byte{})
	}
	if !requested.Is4() {
		return errors.New("cyw43439: only dhcpv4 supported")
	}

	rstack := s.s.StackRetrying(dhcpPoll)
	res, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if static.IsValid() && !static.IsUnspecified() {
			s.log.Warn("dhcp:fallback-static", slog.String("ip", static.String()))
			s.s.SetIPAddr(static)
			return nil
		}
		return errors.New("cyw43439: dhcp:" + err.Error())
	}
	if err := s.s.AssimilateDHCPResults(res); err != nil {
		return errors.New("cyw43439: assimilate dhcp:" + err.Error())
	}
	gw, err := rstack.DoResolveHardwareAddress6(res.Router, 500*time.Millisecond, 4)
	if err != nil {
		return errors.New("cyw43439: resolve gateway:" + err.Error())
	}
	s.s.SetGateway6(gw)

	s.log.Info("dhcp:done",
		slog.String("ip", res.AssignedAddr.String()),
		slog.String("router", res.Router.String()),
		slog.Uint64("lease_sec", uint64(res.TLease)),
	)
	return nil
}

// Poll moves one round of packets between the radio and the stack.
func (s *Stack) Poll() error {
	_, errRecv := s.dev.PollOne()
	n, err := s.s.Encapsulate(s.sendbuf, -1, 0)
	if err != nil {
		return errors.New("cyw43439: encapsulate:" + err.Error())
	}
	if n > 0 {
		if err := s.dev.SendEth(s.sendbuf[:n]); err != nil {
			return errors.New("cyw43439: send:" + err.Error())
		}
	}
	if errRecv != nil {
		return errors.New("cyw43439: poll:" + errRecv.Error())
	}
	return nil
}

// PollForever calls Poll in a loop, yielding between rounds. Run it on its
// own goroutine.
func (s *Stack) PollForever(idle time.Duration) {
	for {
		if err := s.Poll(); err != nil {
			s.log.Error("stack:poll", slog.String("err", err.Error()))
		}
		time.Sleep(idle)
	}
}

// Net returns the lneto stack for dialing and DNS.
func (s *Stack) Net() *xnet.StackAsync {
	return &s.s
}

// Addr returns the stack's IP address.
func (s *Stack) Addr() netip.Addr {
	return s.s.Addr()
}
