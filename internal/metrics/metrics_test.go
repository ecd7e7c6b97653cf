package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	bus := eventbus.New()
	off := m.Register(bus)

	ctx := context.Background()
	eventbus.Emit(ctx, bus, events.ConversionFinish{Schema: "Person", Direction: events.Outbound, Count: 2, Duration: time.Millisecond})
	eventbus.Emit(ctx, bus, events.ConversionFinish{Schema: "Person", Direction: events.Inbound, Count: 1, Err: errors.New("bad")})
	eventbus.Emit(ctx, bus, events.CoercionAdvisory{Schema: "Person", Field: "born", Kind: "DateField"})

	require.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("Person", "serialize", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("Person", "deserialize", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.advisories.WithLabelValues("Person", "born", "DateField")))
	require.Equal(t, 2, testutil.CollectAndCount(m.duration))

	off()
	eventbus.Emit(ctx, bus, events.CoercionAdvisory{Schema: "Person", Field: "born", Kind: "DateField"})
	require.Equal(t, 1.0, testutil.ToFloat64(m.advisories.WithLabelValues("Person", "born", "DateField")))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	bus := eventbus.New()
	defer m.Register(bus)()
	eventbus.Emit(context.Background(), bus, events.CoercionAdvisory{Schema: "Person", Field: "seen", Kind: "DateTimeField"})

	path := filepath.Join(t.TempDir(), "serializer.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `serializer_coercion_advisories_total{field="seen",schema="Person",type="DateTimeField"} 1`)
}
