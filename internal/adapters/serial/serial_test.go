package serial

import (
	"errors"
	"testing"
	"time"

	bugst "go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
)

func TestModeFor(t *testing.T) {
	tests := []struct {
		name     string
		settings ports.SerialSettings
		want     bugst.Mode
	}{
		{
			name:     "8N1",
			settings: ports.SerialSettings{BaudRate: 9600, DataBits: 8},
			want:     bugst.Mode{BaudRate: 9600, DataBits: 8, Parity: bugst.NoParity, StopBits: bugst.OneStopBit},
		},
		{
			name:     "7E2",
			settings: ports.SerialSettings{BaudRate: 19200, DataBits: 7, Parity: ports.ParityEven, StopBits: ports.TwoStopBits},
			want:     bugst.Mode{BaudRate: 19200, DataBits: 7, Parity: bugst.EvenParity, StopBits: bugst.TwoStopBits},
		},
		{
			name:     "odd parity",
			settings: ports.SerialSettings{BaudRate: 115200, DataBits: 8, Parity: ports.ParityOdd},
			want:     bugst.Mode{BaudRate: 115200, DataBits: 8, Parity: bugst.OddParity, StopBits: bugst.OneStopBit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModeFor(tt.settings)
			if got.BaudRate != tt.want.BaudRate || got.DataBits != tt.want.DataBits ||
				got.Parity != tt.want.Parity || got.StopBits != tt.want.StopBits {
				t.Errorf("ModeFor() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

// stubPort implements the parts of bugst.Port the opener touches.
type stubPort struct {
	bugst.Port
	timeout    time.Duration
	timeoutErr error
	closed     bool
}

func (p *stubPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return p.timeoutErr
}

func (p *stubPort) Close() error {
	p.closed = true
	return nil
}

func TestOpener_Open(t *testing.T) {
	stub := &stubPort{}
	var gotName string
	var gotMode *bugst.Mode
	o := NewOpener(nil)
	o.open = func(name string, mode *bugst.Mode) (bugst.Port, error) {
		gotName, gotMode = name, mode
		return stub, nil
	}

	tr, err := o.Open("/dev/ttyUSB0", ports.SerialSettings{BaudRate: 9600, DataBits: 8, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if tr == nil || gotName != "/dev/ttyUSB0" || gotMode.BaudRate != 9600 {
		t.Errorf("opened %q with %+v", gotName, gotMode)
	}
	if stub.timeout != time.Second {
		t.Errorf("read timeout = %v, want 1s", stub.timeout)
	}
}

func TestOpener_OpenErrors(t *testing.T) {
	o := NewOpener(nil)
	o.open = func(string, *bugst.Mode) (bugst.Port, error) {
		return nil, errors.New("no such file or directory")
	}
	if _, err := o.Open("COM3", ports.SerialSettings{BaudRate: 9600}); err == nil {
		t.Error("Open() error = nil, want open failure")
	}

	stub := &stubPort{timeoutErr: errors.New("unsupported")}
	o.open = func(string, *bugst.Mode) (bugst.Port, error) { return stub, nil }
	if _, err := o.Open("COM3", ports.SerialSettings{BaudRate: 9600, ReadTimeout: time.Second}); err == nil {
		t.Error("Open() error = nil, want timeout failure")
	}
	if !stub.closed {
		t.Error("port left open after SetReadTimeout failure")
	}
}

func TestDetector_DetectAvailablePort(t *testing.T) {
	tests := []struct {
		name     string
		detailed []*enumerator.PortDetails
		detErr   error
		names    []string
		namesErr error
		want     string
		wantErr  error
	}{
		{
			name: "first detailed port wins",
			detailed: []*enumerator.PortDetails{
				{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
				{Name: "/dev/ttyUSB1"},
			},
			want: "/dev/ttyUSB0",
		},
		{
			name:   "falls back to plain list",
			detErr: errors.New("not implemented"),
			names:  []string{"COM3", "COM4"},
			want:   "COM3",
		},
		{
			name:    "no ports",
			wantErr: domain.ErrNoPortFound,
		},
		{
			name:     "enumeration failure",
			namesErr: errors.New("access denied"),
			wantErr:  domain.ErrNoPortFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(nil)
			d.detailed = func() ([]*enumerator.PortDetails, error) { return tt.detailed, tt.detErr }
			d.names = func() ([]string, error) { return tt.names, tt.namesErr }

			got, err := d.DetectAvailablePort()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DetectAvailablePort() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectAvailablePort() = %q, want %q", got, tt.want)
			}
		})
	}
}
