package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harveysanders/picostatus/statusled"
)

type nopLines struct{}

func (nopLines) SetLine(statusled.LineID, bool) {}

func TestTimerCountsTicks(t *testing.T) {
	m := New(prometheus.NewRegistry())
	timer := &statusled.ManualTimer{}
	led := statusled.New(nopLines{}, m.Timer(timer))
	led.Initialize()

	timer.Fire(7)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, uint8(7), led.Phase())
}

func TestObserveStatus(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStatus(statusled.WordRed | statusled.WordSolid)
	m.ObserveStatus(statusled.WordTeal)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.changes))
	assert.Equal(t, float64(statusled.WordTeal), testutil.ToFloat64(m.word))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveStatus(statusled.WordGreen | statusled.WordSolid)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "statusled_status_word 8194"), string(body))
	assert.Contains(t, string(body), "statusled_ticks_total 0")
}
