package audio

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"

	"github.com/rbright/recite/internal/capture"
)

func TestSelectDeviceFromListPrimaryDefault(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "default", "default")
	require.NoError(t, err)
	require.Equal(t, "elgato", selection.Device.ID)
	require.Empty(t, selection.Warning)
}

func TestSelectDeviceFromListMutedPrimaryUsesFallback(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "elgato", "sony")
	require.NoError(t, err)
	require.Equal(t, "sony", selection.Device.ID)
	require.Contains(t, selection.Warning, "muted")
	require.True(t, selection.Fallback)
}

func TestSelectDeviceFromListUnavailablePrimaryFallsBackToDefault(t *testing.T) {
	devices := []Device{
		{ID: "usb-mic", Description: "USB Mic", Available: false},
		{ID: "builtin", Description: "Built-in", Available: true, Default: true},
	}

	selection, err := selectDeviceFromList(devices, "usb", "")
	require.NoError(t, err)
	require.Equal(t, "builtin", selection.Device.ID)
	require.Contains(t, selection.Warning, "unavailable")
}

func TestSelectDeviceFromListFailsWhenSelectedAndFallbackMuted(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
	}

	_, err := selectDeviceFromList(devices, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "muted")
}

func TestSelectDeviceFromListUnknownInput(t *testing.T) {
	devices := []Device{{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true}}

	_, err := selectDeviceFromList(devices, "missing", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")
}

func TestSelectDeviceFromListEmpty(t *testing.T) {
	_, err := selectDeviceFromList(nil, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no audio input devices")
}

func TestDeviceMatchesByIDAndDescription(t *testing.T) {
	dev := Device{ID: "alsa_input.usb-elgato", Description: "Elgato Wave 3 Mono"}
	require.True(t, deviceMatches(dev, "elgato"))
	require.True(t, deviceMatches(dev, "wave 3"))
	require.False(t, deviceMatches(dev, "missing"))
}

func TestDeviceString(t *testing.T) {
	require.Equal(t, "Elgato (alsa_input.wave3)", Device{Description: "Elgato", ID: "alsa_input.wave3"}.String())
	require.Equal(t, "Elgato", Device{Description: "Elgato"}.String())
	require.Equal(t, "alsa_input.wave3", Device{ID: "alsa_input.wave3"}.String())
}

func TestListDevicesFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := ListDevices(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, capture.ErrDeviceUnavailable)
}

func TestPulseDeviceOpenFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := PulseDevice{Input: "default", Fallback: "default"}.Open(context.Background(), nil)
	require.ErrorIs(t, err, capture.ErrDeviceUnavailable)
}

func TestClassify(t *testing.T) {
	require.NoError(t, classify(nil))
	require.ErrorIs(t, classify(errors.New("Access denied")), capture.ErrPermissionDenied)
	require.ErrorIs(t, classify(errors.New("connection refused")), capture.ErrDeviceUnavailable)

	already := classify(errors.New("permission denied"))
	require.Equal(t, already, classify(already))
}

func TestSourceStateString(t *testing.T) {
	require.Equal(t, "running", sourceStateString(0))
	require.Equal(t, "idle", sourceStateString(1))
	require.Equal(t, "suspended", sourceStateString(2))
	require.Equal(t, "unknown(99)", sourceStateString(99))
}

func TestSourceAvailable(t *testing.T) {
	require.False(t, sourceAvailable(nil))
	require.True(t, sourceAvailable(&pulseproto.GetSourceInfoReply{})) // no ports => available

	available := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, available, []sourcePort{{name: "mic", available: 2}})
	require.True(t, sourceAvailable(available))

	notAvailable := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, notAvailable, []sourcePort{{name: "mic", available: 1}})
	require.False(t, sourceAvailable(notAvailable))
}

func TestStreamOnPCMForwardsToSink(t *testing.T) {
	var received [][]byte
	s := &Stream{sink: func(b []byte) { received = append(received, append([]byte(nil), b...)) }}

	n, err := s.onPCM([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = s.onPCM(nil)
	require.NoError(t, err)
	require.Zero(t, n)

	require.Equal(t, [][]byte{{1, 2, 3}}, received)
	require.Equal(t, int64(3), s.BytesCaptured())
}

func TestStreamCloseIsIdempotentAndStopsDelivery(t *testing.T) {
	calls := 0
	s := &Stream{device: Device{ID: "mic-1"}, sink: func([]byte) { calls++ }}
	require.Equal(t, "mic-1", s.Device().ID)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	n, err := s.onPCM([]byte{1})
	require.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, calls)
}

func TestWriterFuncDelegatesWrite(t *testing.T) {
	writer := writerFunc(func(b []byte) (int, error) {
		return len(b), nil
	})

	n, err := writer.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

type sourcePort struct {
	name      string
	available uint32
}

func setSourcePorts(t *testing.T, reply *pulseproto.GetSourceInfoReply, ports []sourcePort) {
	t.Helper()

	sliceType := reflect.TypeOf(reply.Ports)
	sliceValue := reflect.MakeSlice(sliceType, len(ports), len(ports))

	for i, port := range ports {
		item := sliceValue.Index(i)
		item.FieldByName("Name").SetString(port.name)
		item.FieldByName("Available").SetUint(uint64(port.available))
	}

	replyValue := reflect.ValueOf(reply).Elem().FieldByName("Ports")
	replyValue.Set(sliceValue)
}
