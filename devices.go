package rgbfx

// This file resolves an effect's configured device selector against the
// live device list lifted from the sink when a run starts.

import (
	"math/rand"
)

// ResolveTargets maps a selector of device indices onto the devices the
// sink reported.  An empty selector targets everything.  Indices out of
// range are dropped with a warning rather than aborting the run.
func ResolveTargets(all []Device, selector []int) (targets []Device) {
	if len(selector) == 0 {
		return all
	}

	targets = make([]Device, 0, len(selector))
	for _, idx := range selector {
		if idx < 0 || idx >= len(all) {
			logger.Warn("unknown device", "device", idx, "known", len(all))
			continue
		}
		targets = append(targets, all[idx])
	}
	return targets
}

// RandomTarget picks a single device for effects with per strike
// targeting, such as lightning.
func RandomTarget(targets []Device) []Device {
	if len(targets) == 0 {
		return nil
	}
	return []Device{targets[rand.Intn(len(targets))]}
}
