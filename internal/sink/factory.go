package sink

import (
	"log"

	"github.com/Darkone83/XBOX-RGB/internal/model"
	"periph.io/x/host/v3"
)

// Detect builds the best available Transmitter for this host: real
// SPI-attached strips when periph.io can initialize the host drivers
// and open a bus per configured channel, a console renderer when SPI
// is unavailable but useConsole is true, and otherwise a silent no-op.
// Grounded on smazurov-videonode/internal/led/factory.go's detect-and-
// fall-back-to-noop shape.
func Detect(busNames [model.NumChannels]string, counts [model.NumChannels]uint16, useConsole bool) Transmitter {
	if _, err := host.Init(); err != nil {
		log.Printf("rgbctrl: periph host init failed, falling back: %v", err)
		return consoleOrNoop(counts, useConsole)
	}

	tx, err := NewSPITransmitter(busNames, counts)
	if err != nil {
		log.Printf("rgbctrl: spi transmitter unavailable, falling back: %v", err)
		return consoleOrNoop(counts, useConsole)
	}
	return tx
}

func consoleOrNoop(counts [model.NumChannels]uint16, useConsole bool) Transmitter {
	if useConsole {
		return NewConsoleTransmitter(counts)
	}
	return NoopTransmitter{}
}
