// Package mqtt keeps a session with an MQTT broker and turns messages on the
// device's set topic into LED status words.
package mqtt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/harveysanders/picostatus/statusled"
)

// ConnState is the progress of the firmware towards a live broker session.
type ConnState uint8

const (
	StateJoining ConnState = iota
	StateDialing
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateJoining:
		return "joining"
	case StateDialing:
		return "dialing"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Status is what the LED shows while in s, until the broker sends a status.
func (s ConnState) Status() statusled.Status {
	switch s {
	case StateJoining:
		return statusled.Status{Color: statusled.Blue, Mode: statusled.LongBlink}
	case StateDialing:
		return statusled.Status{Color: statusled.Teal, Mode: statusled.ShortBlink}
	case StateConnected:
		return statusled.Status{Color: statusled.Green, Mode: statusled.Solid}
	}
	return statusled.Status{Color: statusled.Red, Mode: statusled.LongBlink}
}

// SetTopic is the topic the firmware subscribes to for status words.
func SetTopic(clientID string) string {
	return "statusled/" + clientID + "/set"
}

// statusPayload is the JSON form of a set message. Word wins over Status.
type statusPayload struct {
	Word   *uint16 `json:"word"`
	Status string  `json:"status"`
}

// DecodePayload reads a status word from a message body. Plain text is
// parsed with statusled.ParseWord ("0x6000", "teal|shortblink"). A JSON
// object may carry either {"word": 24576} or {"status": "teal|shortblink"}.
func DecodePayload(payload []byte) (statusled.Word, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return statusled.ParseWord(string(payload))
	}

	var p statusPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return 0, errors.New("mqtt: decode payload:" + err.Error())
	}
	if p.Word != nil {
		return statusled.Word(*p.Word), nil
	}
	if p.Status == "" {
		return 0, errors.New("mqtt: decode payload: no word or status")
	}
	return statusled.ParseWord(p.Status)
}

// splitHostPort splits a host:port string into separate host and port components.
// The last colon separates the port so bracket-less IPv6 hosts still work.
func splitHostPort(addr string) (host string, port uint16, err error) {
	i := len(addr) - 1
	for i >= 0 && addr[i] != ':' {
		i--
	}
	if i < 0 {
		return "", 0, errors.New("missing port in address " + strconv.Quote(addr))
	}
	host = addr[:i]
	if host == "" {
		return "", 0, errors.New("empty host in address " + strconv.Quote(addr))
	}
	n, err := strconv.ParseUint(addr[i+1:], 10, 16)
	if err != nil || n == 0 {
		return "", 0, errors.New("invalid port in address " + strconv.Quote(addr))
	}
	return host, uint16(n), nil
}
