package midi

import (
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrPortsTimeout is returned when the MIDI driver does not answer in time
var ErrPortsTimeout = fault.New("midi port enumeration timed out",
	fmsg.WithDesc("midi port enumeration timed out",
		"MIDI is not responding. Keyboard input still works."),
	ftag.With(ftag.Internal),
)

// Ports is a snapshot of the available MIDI ports
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ListPorts enumerates MIDI ports. The driver can hang (CoreMIDI in
// particular), so the call gives up after timeout.
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrPortsTimeout
	}
}

// Names returns the in and out port names
func (p Ports) Names() (ins, outs []string) {
	for _, in := range p.In {
		ins = append(ins, in.String())
	}
	for _, out := range p.Out {
		outs = append(outs, out.String())
	}
	return ins, outs
}
