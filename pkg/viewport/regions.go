package viewport

import (
	"sort"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/numeric"
)

// Region is a named rectangle usable as a stack root.
type Region struct {
	Name        string
	Description string
	XMin, XMax  float64
	YMin, YMax  float64
}

// DefaultRegion is the name of the full-set view.
const DefaultRegion = "default"

// Regions holds the built-in landmarks by name.
var Regions = map[string]Region{
	DefaultRegion: {
		Name: DefaultRegion, Description: "the whole set",
		XMin: -2, XMax: 0.5, YMin: -2, YMax: 2,
	},
	"seahorse": {
		Name: "seahorse", Description: "Seahorse Valley, dense filaments and curls",
		XMin: -0.8, XMax: -0.7, YMin: 0.05, YMax: 0.15,
	},
	"elephant": {
		Name: "elephant", Description: "Elephant Valley, trunk-like tendrils",
		XMin: -1.85, XMax: -1.75, YMin: -0.10, YMax: -0.02,
	},
	"spiral": {
		Name: "spiral", Description: "small minibrot with tight spiral arms",
		XMin: -0.7435, XMax: -0.7420, YMin: 0.1310, YMax: 0.1325,
	},
	"triple-spiral": {
		Name: "triple-spiral", Description: "threefold symmetric spiral",
		XMin: -0.7480, XMax: -0.7450, YMin: 0.0950, YMax: 0.0980,
	},
	"dragon": {
		Name: "dragon", Description: "Valley of the Dragon",
		XMin: -0.7400, XMax: -0.7350, YMin: 0.1800, YMax: 0.1850,
	},
	"mini-spiral": {
		Name: "mini-spiral", Description: "minibrot inside a spiral arm",
		XMin: -1.7390, XMax: -1.7375, YMin: -0.0235, YMax: -0.0220,
	},
}

// RegionNames returns the built-in region names, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(Regions))
	for name := range Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupRegion returns the rectangle of a named region over T.
func LookupRegion[T numeric.Real[T]](name string) (Rect[T], error) {
	r, ok := Regions[name]
	if !ok {
		return Rect[T]{}, errs.New(errs.ErrCodeInvalidRegion, "unknown region %q", name)
	}
	return RectFromFloat64[T](r.XMin, r.XMax, r.YMin, r.YMax)
}
