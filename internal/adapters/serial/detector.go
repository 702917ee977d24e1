package serial

import (
	bugst "go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/pkg/log"
)

// Detector implements ports.PortDetector by enumerating the system's serial ports.
type Detector struct {
	logger   log.Logger
	detailed func() ([]*enumerator.PortDetails, error)
	names    func() ([]string, error)
}

// NewDetector creates a detector using the platform enumerator.
func NewDetector(logger log.Logger) *Detector {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Detector{
		logger:   logger,
		detailed: enumerator.GetDetailedPortsList,
		names:    bugst.GetPortsList,
	}
}

// DetectAvailablePort logs every visible port and returns the first one.
// Falls back to the plain port list when detailed enumeration is unsupported.
func (d *Detector) DetectAvailablePort() (string, error) {
	details, err := d.detailed()
	if err != nil {
		d.logger.Debug("detailed port enumeration failed", log.Err(err))
	}

	if len(details) > 0 {
		for _, p := range details {
			fields := []log.Field{log.String("port", p.Name)}
			if p.IsUSB {
				fields = append(fields,
					log.String("product", p.Product),
					log.String("vid", p.VID),
					log.String("pid", p.PID),
					log.String("serial", p.SerialNumber))
			}
			d.logger.Info("serial port found", fields...)
		}
		return details[0].Name, nil
	}

	names, err := d.names()
	if err != nil {
		d.logger.Error("serial port enumeration failed", log.Err(err))
		return "", domain.ErrNoPortFound
	}
	for _, name := range names {
		d.logger.Info("serial port found", log.String("port", name))
	}
	if len(names) == 0 {
		d.logger.Error("no serial port available")
		return "", domain.ErrNoPortFound
	}
	return names[0], nil
}
