package rgbfx

// This file contains an alternate sink that drives Philips Hue class
// lights through their bridge, for setups without an OPC server.

import (
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/amimof/huego"
	"github.com/lucasb-eyer/go-colorful"
)

type HueSink struct {
	host   string
	user   string
	bridge *huego.Bridge
	lights []huego.Light
}

func NewHueSink(host string, user string) (sink *HueSink) {
	return &HueSink{host: host, user: user}
}

func (sink *HueSink) Connect() (err errors.Error) {
	bridge := huego.New(sink.host, sink.user)
	lights, errGo := bridge.GetLights()
	if errGo != nil {
		return errors.Wrap(errGo, "connection failed").With("bridge", sink.host).With("stack", stack.Trace().TrimRuntime())
	}
	sink.bridge = bridge
	sink.lights = lights
	return nil
}

func (sink *HueSink) Devices() (devices []Device) {
	devices = make([]Device, 0, len(sink.lights))
	for i, light := range sink.lights {
		devices = append(devices, Device{Index: i, Name: light.Name, Leds: 1})
	}
	return devices
}

func (sink *HueSink) SetColor(device Device, color Color) (err errors.Error) {
	if sink.bridge == nil {
		return errors.New("connection failed").With("bridge", sink.host).With("reason", "not connected").With("stack", stack.Trace().TrimRuntime())
	}
	if device.Index < 0 || device.Index >= len(sink.lights) {
		return errors.New("unknown device").With("device", device.Index).With("stack", stack.Trace().TrimRuntime())
	}

	state := huego.State{}
	if color == Black {
		state.On = false
	} else {
		c := colorful.Color{R: float64(color.R) / 255, G: float64(color.G) / 255, B: float64(color.B) / 255}
		x, y, luminance := c.Xyy()
		state.On = true
		state.Xy = []float32{float32(x), float32(y)}
		state.Bri = uint8(luminance * 254)
	}

	if _, errGo := sink.bridge.SetLightState(sink.lights[device.Index].ID, state); errGo != nil {
		return errors.Wrap(errGo, "connection failed").With("bridge", sink.host).With("light", sink.lights[device.Index].Name).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

func (sink *HueSink) Close() (err errors.Error) {
	sink.bridge = nil
	sink.lights = nil
	return nil
}
