package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"

	"note-trainer/debug"
)

// ErrNoInputs is reported when no usable MIDI input is connected
var ErrNoInputs = fault.New("no midi inputs",
	fmsg.WithDesc("no midi inputs",
		"No MIDI keyboard found. Use the letter keys, or plug one in."),
	ftag.With(ftag.NotFound),
)

// DeviceEvent is emitted when controllers connect/disconnect, or when MIDI
// input is unavailable
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
	Err        error // set for DeviceUnavailable
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
	DeviceUnavailable
)

// DeviceManager handles hot-plug detection of MIDI keyboards and Launchpads
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	filter      []string
	launchpads  bool
	unavailable bool // last scan reported a notice
	log         *zap.Logger

	// swapped in tests
	listPorts    func(time.Duration) (Ports, error)
	newKeyboard  func(id string, in drivers.In) (Controller, error)
	newLaunchpad func(id string, in drivers.In, out drivers.Out) (Controller, error)
}

// Option configures a DeviceManager
type Option func(*DeviceManager)

func WithPollRate(d time.Duration) Option {
	return func(dm *DeviceManager) {
		if d > 0 {
			dm.pollRate = d
		}
	}
}

// WithInputFilter only attaches keyboards whose port name contains one of
// the given substrings (case-insensitive). Empty means any port.
func WithInputFilter(filter []string) Option {
	return func(dm *DeviceManager) { dm.filter = filter }
}

// WithLaunchpads enables Launchpads as letter keypads
func WithLaunchpads(enabled bool) Option {
	return func(dm *DeviceManager) { dm.launchpads = enabled }
}

func WithLogger(l *zap.Logger) Option {
	return func(dm *DeviceManager) { dm.log = l }
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts ...Option) *DeviceManager {
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		launchpads:  true,
		listPorts:   ListPorts,
		newKeyboard: func(id string, in drivers.In) (Controller, error) {
			return NewKeyboardController(id, in)
		},
		newLaunchpad: func(id string, in drivers.In, out drivers.Out) (Controller, error) {
			return NewLaunchpadController(id, in, out)
		},
	}
	for _, opt := range opts {
		opt(dm)
	}
	if dm.log == nil {
		dm.log = debug.L().Named("midi")
	}
	return dm
}

// Events returns a channel of device events. Closed when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	ports, err := dm.listPorts(3 * time.Second)
	if err != nil {
		// driver hung - skip this scan, keep what we have
		dm.log.Warn("port scan failed", zap.Error(err))
		dm.notice(err)
		return
	}

	seen := make(map[string]bool)
	var connected []DeviceEvent

	for _, in := range ports.In {
		id := in.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var (
			c   Controller
			err error
		)
		if kind == ControllerLaunchpad {
			c, err = dm.newLaunchpad(id, in, matchingOut(id, ports.Out))
		} else {
			c, err = dm.newKeyboard(id, in)
		}
		if err != nil {
			dm.log.Warn("open controller failed", zap.String("port", id), zap.Error(err))
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		dm.log.Info("controller connected", zap.String("port", id), zap.Stringer("type", kind))
		connected = append(connected, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	// Check for disconnects
	var disconnected []DeviceEvent
	dm.mu.Lock()
	for id, c := range dm.controllers {
		if seen[id] {
			continue
		}
		c.Close()
		delete(dm.controllers, id)
		disconnected = append(disconnected, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	remaining := len(dm.controllers)
	dm.mu.Unlock()

	for _, ev := range disconnected {
		dm.log.Info("controller disconnected", zap.String("port", ev.ID))
		dm.events <- ev
	}
	for _, ev := range connected {
		dm.events <- ev
	}

	if remaining == 0 {
		dm.notice(ErrNoInputs)
	} else {
		dm.unavailable = false
	}
}

// notice reports unavailability once until an input shows up again
func (dm *DeviceManager) notice(err error) {
	if dm.unavailable {
		return
	}
	dm.unavailable = true
	dm.events <- DeviceEvent{Type: DeviceUnavailable, Err: err}
}

// classify decides whether a port becomes a controller
func (dm *DeviceManager) classify(name string) ControllerType {
	lower := strings.ToLower(name)
	if isLaunchpad(lower) {
		if dm.launchpads {
			return ControllerLaunchpad
		}
		// its pad notes are not keyboard notes
		return ControllerUnknown
	}
	if strings.Contains(lower, "through") {
		return ControllerUnknown
	}
	if len(dm.filter) == 0 {
		return ControllerKeyboard
	}
	for _, f := range dm.filter {
		if strings.Contains(lower, strings.ToLower(f)) {
			return ControllerKeyboard
		}
	}
	return ControllerUnknown
}

func matchingOut(name string, outs []drivers.Out) drivers.Out {
	for _, op := range outs {
		if strings.EqualFold(op.String(), name) {
			return op
		}
	}
	return nil
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// Issue returns the user-facing text for a device notice
func Issue(err error) string {
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return err.Error()
}
