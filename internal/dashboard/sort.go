package dashboard

import (
	"sort"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/monitor"
)

// kindOrder fixes the group ordering for the default sort.
var kindOrder = []backend.Kind{
	backend.KindTemperature,
	backend.KindFan,
	backend.KindPower,
	backend.KindVoltage,
	backend.KindUtilization,
}

// kindRank returns the default-sort rank of a kind.
func kindRank(k backend.Kind) int {
	for i, kind := range kindOrder {
		if k == kind {
			return i
		}
	}
	return len(kindOrder)
}

// sortSensors returns sensor ids in display order for the given sort.
// The default sort groups by kind, preserving discovery order within each
// group; name sorts alphabetically; value sorts descending with sensors
// lacking data at the end.
func sortSensors(sensors []monitor.SensorView, order SortOrder) []backend.SensorID {
	idx := make([]int, len(sensors))
	for i := range idx {
		idx[i] = i
	}

	switch order {
	case SortByName:
		sort.SliceStable(idx, func(a, b int) bool {
			return sensors[idx[a]].Meta.Name < sensors[idx[b]].Meta.Name
		})

	case SortByValue:
		sort.SliceStable(idx, func(a, b int) bool {
			va, vb := sensors[idx[a]], sensors[idx[b]]
			if va.HasData != vb.HasData {
				return va.HasData
			}
			if !va.HasData {
				return va.Meta.Name < vb.Meta.Name
			}
			return lastValid(va.Samples) > lastValid(vb.Samples)
		})

	default:
		sort.SliceStable(idx, func(a, b int) bool {
			return kindRank(sensors[idx[a]].Meta.Kind) < kindRank(sensors[idx[b]].Meta.Kind)
		})
	}

	ids := make([]backend.SensorID, len(idx))
	for i, j := range idx {
		ids[i] = sensors[j].Meta.ID
	}
	return ids
}
