package statsd_test

import (
	"sync"
	"testing"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/arena/pkg/statsd"
)

type recordingClient struct {
	ddstatsd.NoOpClient

	mu      sync.Mutex
	timings []string
	counts  map[string]int64
}

func (c *recordingClient) Timing(name string, _ time.Duration, tags []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timings = append(c.timings, name+"|"+tags[0])
	return nil
}

func (c *recordingClient) Count(name string, value int64, _ []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[name] += value
	return nil
}

func TestRecorderForwardsToClient(t *testing.T) {
	t.Parallel()

	client := &recordingClient{}
	rec := statsd.WithClient(client, zerolog.Nop())

	rec.EmitTickStat(time.Now(), statsd.StagePhysics)
	rec.EmitTickStat(time.Now(), statsd.StageTick)
	rec.Count("kills", 2)
	rec.Count("kills", 1)

	assert.Equal(t, []string{"tick|stage:physics", "tick|stage:tick"}, client.timings)
	assert.Equal(t, int64(3), client.counts["kills"])
}

func TestNewRequiresAddress(t *testing.T) {
	t.Parallel()

	_, err := statsd.New("", nil, zerolog.Nop())
	require.Error(t, err)
}

func TestNopRecorder(t *testing.T) {
	t.Parallel()

	rec := statsd.NewNop()
	assert.NotPanics(t, func() {
		rec.EmitTickStat(time.Now(), statsd.StagePreUpdate)
		rec.Gauge("entities", 3)
	})
	require.NoError(t, rec.Close())
}
