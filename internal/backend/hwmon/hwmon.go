// Package hwmon reads motherboard, CPU, and drive sensors from the Linux
// hwmon sysfs tree (/sys/class/hwmon). Each chip directory exposes its
// readings as small text files: temp*_input in millidegrees Celsius,
// fan*_input in RPM, in*_input in millivolts, power*_input in microwatts.
package hwmon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/logger"
)

// BackendName is the name this adapter reports.
const BackendName = "hwmon"

// DefaultRoot is the standard hwmon sysfs location.
const DefaultRoot = "/sys/class/hwmon"

// feature describes one class of hwmon sensor file.
type feature struct {
	prefix string // sysfs file prefix, e.g. "temp"
	kind   backend.Kind
	scale  float64 // multiplier from raw file value to the canonical unit
}

// hwmon file scaling per the kernel sysfs-interface documentation.
var features = []feature{
	{prefix: "temp", kind: backend.KindTemperature, scale: 1.0 / 1000},
	{prefix: "fan", kind: backend.KindFan, scale: 1},
	{prefix: "in", kind: backend.KindVoltage, scale: 1.0 / 1000},
	{prefix: "power", kind: backend.KindPower, scale: 1.0 / 1000000},
}

// fileRef locates one sensor's value file and its scaling.
type fileRef struct {
	path  string
	scale float64
}

// Adapter is the hwmon backend. It holds no native handles, only resolved
// file paths; enumeration walks the tree, sampling reads the value files.
type Adapter struct {
	root string
	log  logger.Logger

	mu    sync.RWMutex
	files map[backend.SensorID]fileRef
}

// New creates an hwmon adapter rooted at the given sysfs directory.
// An empty root uses the standard location.
func New(root string, log logger.Logger) *Adapter {
	if root == "" {
		root = DefaultRoot
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Adapter{
		root:  root,
		log:   log,
		files: make(map[backend.SensorID]fileRef),
	}
}

// Name implements backend.Backend.
func (a *Adapter) Name() string {
	return BackendName
}

// Enumerate walks every hwmon chip directory and registers one sensor per
// readable value file. A missing root is an init failure; an individual
// unreadable file is simply skipped.
func (a *Adapter) Enumerate(ctx context.Context) ([]backend.SensorMeta, error) {
	if _, err := os.Stat(a.root); err != nil {
		return nil, backend.NewError(backend.InitFailure, BackendName, err)
	}

	chipDirs, err := filepath.Glob(filepath.Join(a.root, "hwmon*"))
	if err != nil {
		return nil, backend.NewError(backend.IOFailure, BackendName, err)
	}
	sort.Strings(chipDirs)

	var metas []backend.SensorMeta
	files := make(map[backend.SensorID]fileRef)

	for _, dir := range chipDirs {
		if ctx.Err() != nil {
			return nil, backend.NewError(backend.Timeout, BackendName, ctx.Err())
		}

		chipName := readString(filepath.Join(dir, "name"))
		if chipName == "" {
			continue
		}
		// Chip ids carry the hwmon index so two chips with the same
		// driver name (e.g. two nvme drives) stay distinct.
		chipID := chipName + "-" + filepath.Base(dir)
		friendly := FriendlyName(chipName)

		for _, f := range features {
			inputs, _ := filepath.Glob(filepath.Join(dir, f.prefix+"*_input"))
			sort.Strings(inputs)
			for _, input := range inputs {
				base := filepath.Base(input)
				channel := strings.TrimSuffix(base, "_input")

				label := readString(filepath.Join(dir, channel+"_label"))
				if label == "" {
					label = channel
				}

				id := backend.SensorID(fmt.Sprintf("%s/%s/%s", BackendName, chipID, channel))
				metas = append(metas, backend.SensorMeta{
					ID:      id,
					Name:    friendly + " " + label,
					Backend: BackendName,
					Kind:    f.kind,
					Unit:    backend.UnitFor(f.kind),
				})
				files[id] = fileRef{path: input, scale: f.scale}
			}
		}
	}

	a.mu.Lock()
	a.files = files
	a.mu.Unlock()

	a.log.Debug("enumerated %d sensors under %s", len(metas), a.root)
	return metas, nil
}

// Sample reads the value file for each requested sensor. A sensor whose
// file cannot be read or parsed this cycle is omitted from the result
// (recorded as absent by the caller), not treated as a backend failure.
func (a *Adapter) Sample(ctx context.Context, ids []backend.SensorID) (map[backend.SensorID]float64, error) {
	a.mu.RLock()
	files := a.files
	a.mu.RUnlock()

	values := make(map[backend.SensorID]float64, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return nil, backend.NewError(backend.Timeout, BackendName, ctx.Err())
		}
		ref, ok := files[id]
		if !ok {
			continue
		}
		raw, err := os.ReadFile(ref.path)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil {
			continue
		}
		values[id] = v * ref.scale
	}
	return values, nil
}

// Close implements backend.Backend. The adapter holds no native state.
func (a *Adapter) Close() error {
	return nil
}

// readString reads and trims a small sysfs file, returning "" on any error.
func readString(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
