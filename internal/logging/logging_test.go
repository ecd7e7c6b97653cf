package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
	"github.com/hanpama/serializer/internal/reqid"
)

func TestNewWithWriter_Errors(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "xml", "info")
	require.Error(t, err)
	_, err = NewWithWriter(&bytes.Buffer{}, "logfmt", "loud")
	require.Error(t, err)
}

func TestSubscribe_Advisory(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "logfmt", "info")
	require.NoError(t, err)

	bus := eventbus.New()
	off := Subscribe(bus, logger)
	defer off()

	ctx, id := reqid.NewContext(context.Background())
	eventbus.Emit(ctx, bus, events.ConversionStart{Schema: "Person", Direction: events.Inbound})
	eventbus.Emit(ctx, bus, events.CoercionAdvisory{Schema: "Person", Field: "born", Kind: "DateField", Message: "time dropped"})

	out := buf.String()
	require.Contains(t, out, "level=warn")
	require.Contains(t, out, `msg="time dropped"`)
	require.Contains(t, out, "field=born")
	require.Contains(t, out, "id="+id)
	require.NotContains(t, out, "conversion started", "debug is filtered at info")
}

func TestSubscribe_JSONFailure(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "json", "debug")
	require.NoError(t, err)

	bus := eventbus.New()
	Subscribe(bus, logger)
	eventbus.Emit(context.Background(), bus, events.ConversionFinish{Schema: "Person", Err: errors.New("boom")})

	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), `"err":"boom"`)
}
