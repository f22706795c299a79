package colormap

import (
	"image/color"
)

const (
	DefaultColorMapSize = 256 // Default number of colors in the map

	// ByteMin and ByteMax bound the value range of a sensor frame.
	ByteMin = 0
	ByteMax = 0xFF
)

// Bounds is the value range mapped onto the color gradient.
type Bounds struct {
	Min float64
	Max float64
}

// ByteBounds returns the fixed [0, 255] range used for frames.
func ByteBounds() Bounds {
	return Bounds{Min: ByteMin, Max: ByteMax}
}

// ColorMapper provides value-to-color mapping over a pre-computed gradient.
type ColorMapper struct {
	colorMap      []color.Color // Pre-computed colors
	theme         func(float64) color.Color
	size          int     // Cache size
	valuePerIndex float64 // Value range per index step
	bounds        Bounds
}

// NewColorMapper creates a new color mapper with the given theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme Theme, bounds Bounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
func NewColorMapperWithSize(theme Theme, bounds Bounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap: make([]color.Color, size),
		theme:    getTheme(theme),
		size:     size,
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds updates the value bounds and recomputes the color map
func (cm *ColorMapper) UpdateBounds(bounds Bounds) {
	if bounds.Max <= bounds.Min {
		bounds.Max = bounds.Min + 1
	}
	cm.bounds = bounds
	cm.valuePerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)

	for i := 0; i < cm.size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1))
	}
}

// Color returns the color for v. Values outside the bounds are clamped.
func (cm *ColorMapper) Color(v float64) color.Color {
	return cm.colorMap[cm.Index(v)]
}

// Index returns the gradient slot for v.
func (cm *ColorMapper) Index(v float64) int {
	index := int((v - cm.bounds.Min) / cm.valuePerIndex)
	if index < 0 {
		return 0
	}
	if index >= cm.size {
		return cm.size - 1
	}
	return index
}

// Gradient returns the pre-computed colors, lowest value first.
func (cm *ColorMapper) Gradient() []color.Color {
	out := make([]color.Color, len(cm.colorMap))
	copy(out, cm.colorMap)
	return out
}

// Bounds returns the current value range.
func (cm *ColorMapper) Bounds() Bounds {
	return cm.bounds
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}
