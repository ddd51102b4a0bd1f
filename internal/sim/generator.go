package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// ReadingSample is the sensor payload posted for one device on one tick.
type ReadingSample struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	BatteryLevel float64 `json:"battery_level"`
}

type deviceState struct {
	temperature float64
	humidity    float64
	battery     float64
}

// Generator produces a slowly drifting sensor series per device. Batteries
// drain monotonically and temperatures occasionally spike past the critical
// threshold so alerting paths see real traffic.
type Generator struct {
	rnd         *rand.Rand
	spikeChance int
	devices     []deviceState
}

func NewGenerator(seed int64, deviceCount, spikeChance int) *Generator {
	rnd := rand.New(rand.NewSource(seed))
	devices := make([]deviceState, deviceCount)
	for i := range devices {
		devices[i] = deviceState{
			temperature: 18 + rnd.Float64()*8,
			humidity:    40 + rnd.Float64()*25,
			battery:     70 + rnd.Float64()*30,
		}
	}
	return &Generator{rnd: rnd, spikeChance: spikeChance, devices: devices}
}

func (g *Generator) NextReading(deviceIndex int) ReadingSample {
	state := &g.devices[deviceIndex]

	state.temperature = clamp(state.temperature+g.rnd.Float64()*2-1, -40, 120)
	state.humidity = clamp(state.humidity+g.rnd.Float64()*4-2, 5, 95)
	state.battery = clamp(state.battery-g.rnd.Float64()*0.4, 0, 100)

	temperature := state.temperature
	if g.rnd.Intn(100) < g.spikeChance {
		temperature = clamp(temperature+60+g.rnd.Float64()*20, -40, 149)
	}

	return ReadingSample{
		Temperature:  round2(temperature),
		Humidity:     round2(state.humidity),
		BatteryLevel: round2(state.battery),
	}
}

// DeviceName returns the stable name for the nth simulated device.
func DeviceName(deviceIndex int) string {
	return fmt.Sprintf("sim-sensor-%03d", deviceIndex+1)
}

func clamp(value, lo, hi float64) float64 {
	return math.Min(math.Max(value, lo), hi)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
