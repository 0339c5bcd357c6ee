package gm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gmfit/domain/core"
)

// IMT describes one intensity measure type. Period is meaningful only for
// spectral acceleration; scalar measures (PGA, PGV, PGD) carry zero.
type IMT struct {
	Name   string
	Period float64
}

// IsSA reports whether the measure is a spectral acceleration
func (m IMT) IsSA() bool {
	return strings.HasPrefix(m.Name, "SA(")
}

func (m IMT) String() string {
	return m.Name
}

// scalar measures accepted besides SA(T)
var scalarIMTs = map[string]bool{
	"PGA": true,
	"PGV": true,
	"PGD": true,
	"IA":  true,
	"CAV": true,
}

// ParseIMT parses an intensity-measure name such as "PGA" or "SA(0.2)".
// The canonical SA name re-renders the period, so "SA(0.20)" and "SA(0.2)"
// harmonize to the same descriptor.
func ParseIMT(name string) (IMT, error) {
	name = strings.TrimSpace(name)
	if scalarIMTs[name] {
		return IMT{Name: name}, nil
	}
	if strings.HasPrefix(name, "SA(") && strings.HasSuffix(name, ")") {
		raw := name[len("SA(") : len(name)-1]
		period, err := strconv.ParseFloat(raw, 64)
		if err != nil || period <= 0 {
			return IMT{}, core.NewInvalidIMTError(name)
		}
		canonical := fmt.Sprintf("SA(%s)", strconv.FormatFloat(period, 'g', -1, 64))
		return IMT{Name: canonical, Period: period}, nil
	}
	return IMT{}, core.NewInvalidIMTError(name)
}

// HarmonizeIMTs parses and deduplicates a collection of intensity-measure
// names into canonical descriptors, sorted with scalar measures first (by
// name) and spectral accelerations ordered by period.
func HarmonizeIMTs(names []string) ([]IMT, error) {
	if len(names) == 0 {
		return nil, core.NewBadConfigError("imts", "at least one intensity measure is required")
	}
	seen := make(map[string]bool, len(names))
	imts := make([]IMT, 0, len(names))
	for _, name := range names {
		imt, err := ParseIMT(name)
		if err != nil {
			return nil, err
		}
		if seen[imt.Name] {
			continue
		}
		seen[imt.Name] = true
		imts = append(imts, imt)
	}
	sort.Slice(imts, func(i, j int) bool {
		si, sj := imts[i].IsSA(), imts[j].IsSA()
		if si != sj {
			return !si
		}
		if si {
			return imts[i].Period < imts[j].Period
		}
		return imts[i].Name < imts[j].Name
	})
	return imts, nil
}
