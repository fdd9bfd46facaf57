package convert

import "fmt"

// Preset names a bundled quality profile.
type Preset string

const (
	// PresetWeb targets general web delivery.
	PresetWeb Preset = "web"
	// PresetHigh trades size for fidelity.
	PresetHigh Preset = "high"
	// PresetThumbnail produces small previews at a quarter of the
	// original dimensions.
	PresetThumbnail Preset = "thumbnail"
)

var presets = map[Preset]Options{
	PresetWeb: {
		Quality:              75,
		PreserveTransparency: true,
	},
	PresetHigh: {
		Quality:              90,
		PreserveTransparency: true,
	},
	PresetThumbnail: {
		Quality:              60,
		PreserveTransparency: true,
		ScaleFactor:          0.25,
	},
}

// PresetOptions resolves a preset name to its Options.
func PresetOptions(name string) (Options, error) {
	opts, ok := presets[Preset(name)]
	if !ok {
		return Options{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidOptions, name)
	}
	return opts, nil
}

// PresetNames lists the available presets.
func PresetNames() []string {
	return []string{string(PresetWeb), string(PresetHigh), string(PresetThumbnail)}
}
