// Package analyte defines expected electrochemical behaviour per analyte:
// the potential windows where oxidation and reduction peaks are expected,
// and the minimum peak height worth reporting. Profiles are looked up by
// name from an immutable table that is passed into each analysis by value,
// so concurrent analyses never share mutable state.
package analyte

import "sort"

// Window is an inclusive potential range in volts.
type Window struct {
	Min float64
	Max float64
}

// Contains reports whether the potential lies inside the window.
func (w Window) Contains(potential float64) bool {
	return potential >= w.Min && potential <= w.Max
}

// Width returns the span of the window in volts.
func (w Window) Width() float64 {
	return w.Max - w.Min
}

// Profile describes expected peak behaviour for one analyte.
type Profile struct {
	Name      string
	Oxidation Window
	Reduction Window
	MinHeight float64 // minimum reportable peak height, signal units
}

// Policy selects how peak search behaves when no analyte profile matches.
type Policy int

const (
	// PolicyFullRange searches the full potential range when the analyte
	// is unknown. Blank and exploratory scans report whatever they find.
	PolicyFullRange Policy = iota

	// PolicyReject rejects every candidate when the analyte is unknown,
	// for workflows that only trust profiled chemistry.
	PolicyReject
)

// Table is an immutable set of analyte profiles.
type Table struct {
	profiles map[string]Profile
}

// NewTable builds a table from the given profiles. Later duplicates of a
// name override earlier ones.
func NewTable(profiles ...Profile) Table {
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		m[p.Name] = p
	}

	return Table{profiles: m}
}

// DefaultTable returns profiles for commonly assayed redox species. The
// windows are deliberately generous; the validator narrows further via
// confidence penalties rather than hard cuts.
func DefaultTable() Table {
	return NewTable(
		Profile{
			Name:      "ferrocyanide",
			Oxidation: Window{Min: 0.15, Max: 0.45},
			Reduction: Window{Min: 0.05, Max: 0.35},
			MinHeight: 1e-7,
		},
		Profile{
			Name:      "dopamine",
			Oxidation: Window{Min: 0.10, Max: 0.40},
			Reduction: Window{Min: -0.05, Max: 0.25},
			MinHeight: 5e-8,
		},
		Profile{
			Name:      "paracetamol",
			Oxidation: Window{Min: 0.35, Max: 0.75},
			Reduction: Window{Min: 0.20, Max: 0.55},
			MinHeight: 5e-8,
		},
		Profile{
			Name:      "ascorbic-acid",
			Oxidation: Window{Min: 0.25, Max: 0.60},
			Reduction: Window{Min: -0.10, Max: 0.20},
			MinHeight: 1e-7,
		},
	)
}

// Lookup returns the profile for name and whether it exists.
func (t Table) Lookup(name string) (Profile, bool) {
	p, ok := t.profiles[name]
	return p, ok
}

// Len returns the number of profiles in the table.
func (t Table) Len() int {
	return len(t.profiles)
}

// Names returns all profile names in lexical order, so listings built from
// the table print deterministically.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.profiles))
	for name := range t.profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
