package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harveysanders/picostatus/internal/config"
	"github.com/harveysanders/picostatus/statusled"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func outputLines(out string) []string {
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

func TestDecode(t *testing.T) {
	out, err := execute(t, "decode", "0x6000")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"word   0x6000",
		"color  teal",
		"mode   shortblink",
		"red    off",
		"green  on",
		"blue   on",
	}, outputLines(out))
}

func TestDecodeDropsUndefinedBits(t *testing.T) {
	out, err := execute(t, "decode", "0x1ffe")
	require.NoError(t, err)
	assert.Contains(t, out, "word   0x0002\n")
	assert.Contains(t, out, "color  none\n")
	assert.Contains(t, out, "mode   solid\n")
}

func TestDecodeRejectsBadWord(t *testing.T) {
	_, err := execute(t, "decode", "purple")
	assert.ErrorIs(t, err, statusled.ErrSyntax)

	_, err = execute(t, "decode")
	assert.Error(t, err)
}

func TestSimulateShortBlink(t *testing.T) {
	out, err := execute(t, "simulate", "--status", "teal|shortblink", "--ticks", "12")
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, 13)
	assert.Equal(t, "tick phase  R G B  status", lines[0])
	assert.Equal(t, "   0     0  . G B  teal|shortblink", lines[1])
	assert.Equal(t, "   1     1  . . .  teal|shortblink", lines[2])
	assert.Equal(t, "   9     9  . . .  teal|shortblink", lines[10])
	assert.Equal(t, "  10     0  . G B  teal|shortblink", lines[11])
}

func TestSimulateDefaultStatus(t *testing.T) {
	out, err := execute(t, "simulate", "-n", "1")
	require.NoError(t, err)
	assert.Equal(t, "   0     0  . . B  blue|shortblink", outputLines(out)[1])
}

func TestSimulateSwitchRestartsCycle(t *testing.T) {
	out, err := execute(t, "simulate", "--status", "red|longblink", "--ticks", "4", "--at", "2=green|shortblink")
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, 5)
	assert.Equal(t, "   1     1  R . .  red|longblink", lines[2])
	assert.Equal(t, "   2     0  . G .  green|shortblink", lines[3])
	assert.Equal(t, "   3     1  . . .  green|shortblink", lines[4])
}

func TestSimulateErrors(t *testing.T) {
	for _, args := range [][]string{
		{"simulate", "--ticks", "-1"},
		{"simulate", "--at", "3"},
		{"simulate", "--at", "x=red"},
		{"simulate", "--at", "3=purple"},
		{"simulate", "--status", "purple"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

type syncLines struct {
	mu   sync.Mutex
	high [3]bool
}

func (s *syncLines) SetLine(id statusled.LineID, high bool) {
	s.mu.Lock()
	s.high[id] = high
	s.mu.Unlock()
}

func TestDaemonRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	require.NoError(t, os.WriteFile(path, []byte("green|solid\n"), 0o644))

	cfg := config.Default()
	cfg.LED.TickPeriod = config.Duration{Duration: 5 * time.Millisecond}
	cfg.Status.File = path
	cfg.Metrics.Listen = "127.0.0.1:0"

	d := newDaemon(cfg, &syncLines{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.run(ctx) }()

	select {
	case <-d.ready:
	case err := <-errc:
		t.Fatalf("run returned early: %v", err)
	}
	assert.Equal(t, statusled.Status{Color: statusled.Green, Mode: statusled.Solid}, d.led.Status())

	require.NoError(t, os.WriteFile(path, []byte("magenta|longblink\n"), 0o644))
	require.Eventually(t, func() bool {
		return d.led.Status() == statusled.Status{Color: statusled.Magenta, Mode: statusled.LongBlink}
	}, 2*time.Second, 10*time.Millisecond)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + d.metricsAddr.String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "statusled_status_word 49155")

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestDaemonRejectsBadInitialStatus(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.Default()
	cfg.LED.InitialStatus = "purple"
	d := newDaemon(cfg, &syncLines{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := d.run(context.Background())
	assert.ErrorIs(t, err, statusled.ErrSyntax)
}
