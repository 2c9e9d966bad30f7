package rgbfx

// This file contains the Open Pixel Control sink, the default
// transport towards a fadecandy style lighting server.  Each device
// occupies its own OPC channel and a push fills every LED on the
// channel with the one computed color.

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/cnf/structhash"
	"github.com/kellydunn/go-opc"
)

type opcFrame struct {
	Channel int
	Color   Color
}

type OPCSink struct {
	server  string
	client  *opc.Client
	devices []Device
	last    map[int][]byte
}

// NewOPCSink describes the attached hardware as a list of LED counts,
// one entry per OPC channel in order.  OPC has no device enumeration
// of its own so the topology is part of the configuration.
func NewOPCSink(server string, ledsPerChannel []int) (sink *OPCSink) {
	sink = &OPCSink{
		server: server,
		last:   map[int][]byte{},
	}
	for i, leds := range ledsPerChannel {
		if leds < 1 {
			leds = 1
		}
		sink.devices = append(sink.devices, Device{
			Index: i,
			Name:  fmt.Sprintf("opc-channel-%d", i+1),
			Leds:  leds,
		})
	}
	return sink
}

func (sink *OPCSink) Connect() (err errors.Error) {
	client := opc.NewClient()
	if errGo := client.Connect("tcp", sink.server); errGo != nil {
		return errors.Wrap(errGo, "connection failed").With("server", sink.server).With("stack", stack.Trace().TrimRuntime())
	}
	sink.client = client
	return nil
}

func (sink *OPCSink) Devices() (devices []Device) {
	devices = make([]Device, len(sink.devices))
	copy(devices, sink.devices)
	return devices
}

func (sink *OPCSink) SetColor(device Device, color Color) (err errors.Error) {
	if sink.client == nil {
		return errors.New("connection failed").With("server", sink.server).With("reason", "not connected").With("stack", stack.Trace().TrimRuntime())
	}
	if device.Index < 0 || device.Index >= len(sink.devices) {
		return errors.New("unknown device").With("device", device.Index).With("stack", stack.Trace().TrimRuntime())
	}

	// Identical consecutive frames are not re-sent to the server.
	hash := structhash.Md5(opcFrame{Channel: device.Index, Color: color}, 1)
	if last, seen := sink.last[device.Index]; seen && string(last) == string(hash) {
		return nil
	}

	leds := sink.devices[device.Index].Leds
	// Channel 0 is the OPC broadcast channel, devices start at 1.
	m := opc.NewMessage(uint8(device.Index + 1))
	m.SetLength(uint16(leds * 3))
	for i := 0; i < leds; i++ {
		m.SetPixelColor(i, color.R, color.G, color.B)
	}

	if errGo := sink.client.Send(m); errGo != nil {
		return errors.Wrap(errGo, "connection failed").With("server", sink.server).With("stack", stack.Trace().TrimRuntime())
	}
	sink.last[device.Index] = hash
	return nil
}

func (sink *OPCSink) Close() (err errors.Error) {
	// The OPC client holds one TCP conn with no close of its own,
	// dropping our reference is all the shutdown there is.
	sink.client = nil
	sink.last = map[int][]byte{}
	return nil
}
