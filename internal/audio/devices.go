// Package audio discovers PulseAudio input sources and streams microphone PCM.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const clientName = "recite"

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved capture source plus an optional fallback warning.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// String formats device metadata for logs and CLI output.
func (d Device) String() string {
	description := strings.TrimSpace(d.Description)
	id := strings.TrimSpace(d.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func newClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(clientName),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, classify(fmt.Errorf("connect pulse server: %w", err))
	}
	return client, nil
}

// ListDevices returns Pulse input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, classify(fmt.Errorf("read default source: %w", err))
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, classify(fmt.Errorf("list sources: %w", err))
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			State:       sourceStateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// SelectDevice resolves audio.input/audio.fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	selection, err := selectDeviceFromList(devices, input, fallback)
	if err != nil {
		return Selection{}, classify(err)
	}
	return selection, nil
}

// usable reports whether a device can capture right now, with the reason when not.
func usable(device Device) (bool, string) {
	switch {
	case device.Muted:
		return false, "muted"
	case !device.Available:
		return false, "unavailable"
	default:
		return true, ""
	}
}

// selectDeviceFromList applies the preferred-then-fallback policy to a device list.
func selectDeviceFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	input = normalizeTerm(input)
	fallback = normalizeTerm(fallback)

	primary, err := findDevice(devices, input)
	if err != nil {
		return Selection{}, fmt.Errorf("audio.input: %w", err)
	}
	ok, reason := usable(*primary)
	if ok {
		return Selection{Device: *primary}, nil
	}

	alternate, err := findDevice(devices, fallback)
	if err != nil {
		return Selection{}, fmt.Errorf("primary input %q is %s and no usable fallback: %w", primary.ID, reason, err)
	}
	if ok, altReason := usable(*alternate); !ok {
		return Selection{}, fmt.Errorf("audio fallback device %q is %s", alternate.ID, altReason)
	}

	return Selection{
		Device:   *alternate,
		Warning:  fmt.Sprintf("audio.input %q is %s; falling back to %q", primary.ID, reason, alternate.ID),
		Fallback: primary.ID != alternate.ID,
	}, nil
}

// findDevice resolves a search term, where "" and "default" mean the server default.
func findDevice(devices []Device, term string) (*Device, error) {
	for i := range devices {
		dev := &devices[i]
		if term == "" {
			if dev.Default {
				return dev, nil
			}
			continue
		}
		if deviceMatches(*dev, term) {
			return dev, nil
		}
	}
	if term == "" {
		return nil, errors.New("default audio source is unavailable")
	}
	return nil, fmt.Errorf("%q did not match any device", term)
}

func normalizeTerm(term string) string {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "default" {
		return ""
	}
	return term
}

// deviceMatches reports whether a search term matches a device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(device.ID)
	desc := strings.ToLower(device.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}

// sourceStateString maps Pulse source state constants to readable values.
func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sourceAvailable maps Pulse port availability to a boolean.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
