package sink

import "github.com/Darkone83/XBOX-RGB/internal/model"

// NoopTransmitter drops every frame. Grounded on
// smazurov-videonode/internal/led/noop.go: a silent backend for
// platforms (and tests) with no attached hardware.
type NoopTransmitter struct{}

// Transmit implements Transmitter by doing nothing.
func (NoopTransmitter) Transmit([model.NumChannels][]model.RGB) error { return nil }
