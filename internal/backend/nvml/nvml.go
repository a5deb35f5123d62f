// Package nvml exposes NVIDIA GPU sensors through the NVML management
// library. Each GPU contributes a temperature sensor, one sensor per fan,
// a power draw sensor, and a utilization sensor.
package nvml

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/logger"
)

// BackendName is the name this adapter reports.
const BackendName = "nvml"

const milliWattsPerWatt = 1000

// reading samples one sensor from its device handle.
type reading func(device nvml.Device) (float64, nvml.Return)

// Adapter is the NVML backend. The library is initialized once in New and
// torn down in Close; device handles are resolved at enumeration time.
type Adapter struct {
	log logger.Logger

	mu       sync.RWMutex
	readings map[backend.SensorID]sensorSource
}

// sensorSource binds a device handle to the call that reads one value.
type sensorSource struct {
	device nvml.Device
	read   reading
}

// New initializes NVML and returns the adapter. Initialization failure
// (no driver, no GPU) is reported as an init failure so the caller can
// mark the backend unavailable rather than abort.
func New(log logger.Logger) (*Adapter, error) {
	if log == nil {
		log = logger.Noop()
	}
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, backend.NewError(backend.InitFailure, BackendName,
			fmt.Errorf("failed to initialize NVML: %v", nvml.ErrorString(ret)))
	}
	return &Adapter{
		log:      log,
		readings: make(map[backend.SensorID]sensorSource),
	}, nil
}

// Name implements backend.Backend.
func (a *Adapter) Name() string {
	return BackendName
}

// Enumerate discovers every GPU and registers its sensors.
func (a *Adapter) Enumerate(ctx context.Context) ([]backend.SensorMeta, error) {
	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, backend.NewError(backend.InitFailure, BackendName,
			fmt.Errorf("failed to get device count: %v", nvml.ErrorString(ret)))
	}

	var metas []backend.SensorMeta
	readings := make(map[backend.SensorID]sensorSource)

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return nil, backend.NewError(backend.Timeout, BackendName, ctx.Err())
		}

		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			a.log.Warn("failed to get handle for GPU %d: %v", i, nvml.ErrorString(ret))
			continue
		}

		name, ret := device.GetName()
		if ret != nvml.SUCCESS {
			name = fmt.Sprintf("GPU %d", i)
		}
		name = strings.TrimSpace(name)

		add := func(channel, display string, kind backend.Kind, read reading) {
			id := backend.SensorID(fmt.Sprintf("%s/gpu%d/%s", BackendName, i, channel))
			metas = append(metas, backend.SensorMeta{
				ID:      id,
				Name:    fmt.Sprintf("%s %s", name, display),
				Backend: BackendName,
				Kind:    kind,
				Unit:    backend.UnitFor(kind),
			})
			readings[id] = sensorSource{device: device, read: read}
		}

		add("temp", "Temp", backend.KindTemperature, readTemperature)
		add("power", "Power", backend.KindPower, readPowerUsage)
		add("util", "Utilization", backend.KindUtilization, readUtilization)

		fanCount, ret := device.GetNumFans()
		if ret != nvml.SUCCESS {
			fanCount = 0
		}
		for fan := 0; fan < fanCount; fan++ {
			fanIndex := fan
			label := "Fan"
			if fanCount > 1 {
				label = fmt.Sprintf("Fan %d", fan+1)
			}
			add(fmt.Sprintf("fan%d", fan), label, backend.KindFan,
				func(device nvml.Device) (float64, nvml.Return) {
					speed, ret := device.GetFanSpeed_v2(fanIndex)
					return float64(speed), ret
				})
		}
	}

	a.mu.Lock()
	a.readings = readings
	a.mu.Unlock()

	a.log.Debug("enumerated %d sensors across %d GPUs", len(metas), count)
	return metas, nil
}

// Sample reads the requested sensors. A sensor whose NVML call fails this
// cycle is omitted from the result; only a lost library connection is
// surfaced as a backend error.
func (a *Adapter) Sample(ctx context.Context, ids []backend.SensorID) (map[backend.SensorID]float64, error) {
	a.mu.RLock()
	readings := a.readings
	a.mu.RUnlock()

	values := make(map[backend.SensorID]float64, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return nil, backend.NewError(backend.Timeout, BackendName, ctx.Err())
		}
		src, ok := readings[id]
		if !ok {
			continue
		}
		v, ret := src.read(src.device)
		switch ret {
		case nvml.SUCCESS:
			values[id] = v
		case nvml.ERROR_UNINITIALIZED, nvml.ERROR_GPU_IS_LOST, nvml.ERROR_DRIVER_NOT_LOADED:
			return nil, backend.NewError(backend.IOFailure, BackendName,
				fmt.Errorf("NVML read failed: %v", nvml.ErrorString(ret)))
		default:
			// Single-sensor failure, e.g. feature unsupported on this
			// GPU. Leave the sensor absent for this cycle.
			continue
		}
	}
	return values, nil
}

// Close shuts down the NVML library.
func (a *Adapter) Close() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return backend.NewError(backend.IOFailure, BackendName,
			fmt.Errorf("failed to shutdown NVML: %v", nvml.ErrorString(ret)))
	}
	return nil
}

func readTemperature(device nvml.Device) (float64, nvml.Return) {
	temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
	return float64(temp), ret
}

func readPowerUsage(device nvml.Device) (float64, nvml.Return) {
	mw, ret := device.GetPowerUsage()
	return float64(mw) / milliWattsPerWatt, ret
}

func readUtilization(device nvml.Device) (float64, nvml.Return) {
	util, ret := device.GetUtilizationRates()
	return float64(util.Gpu), ret
}
