package events

import "time"

// Direction names the way a conversion runs.
type Direction string

const (
	Outbound Direction = "serialize"
	Inbound  Direction = "deserialize"
)

// ConversionStart is emitted before a serializer converts its source.
type ConversionStart struct {
	Schema    string
	Direction Direction
	Count     int // number of source objects
}

// ConversionFinish is emitted after the conversion completes.
type ConversionFinish struct {
	Schema    string
	Direction Direction
	Count     int
	Err       error
	Duration  time.Duration
}

// CoercionAdvisory is emitted when a field accepted a near-miss value type
// and converted it.
type CoercionAdvisory struct {
	Schema  string
	Field   string
	Kind    string // type name of the receiving field
	Value   any
	Message string
}
