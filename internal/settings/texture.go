package settings

const (
	TextureFilter     Key = "texture.filter"
	TextureResolution Key = "texture.resolution"
)

// OpenGL minification filter constants as reported by the engine.
const (
	FilterBilinearConst  = 0x2701 // GL_LINEAR_MIPMAP_NEAREST
	FilterTrilinearConst = 0x2703 // GL_LINEAR_MIPMAP_LINEAR
)

// Filter is the texture filtering mode. Anisotropic levels are sampled on
// top of bilinear mipmapping.
type Filter int

const (
	Bilinear Filter = iota
	Trilinear
	Anisotropic2x
	Anisotropic4x
	Anisotropic8x
	Anisotropic16x
)

var filterLabels = map[Filter]string{
	Bilinear:       "Bilinear",
	Trilinear:      "Trilinear",
	Anisotropic2x:  "2x Anisotropic",
	Anisotropic4x:  "4x Anisotropic",
	Anisotropic8x:  "8x Anisotropic",
	Anisotropic16x: "16x Anisotropic",
}

func (f Filter) String() string {
	return filterLabels[f]
}

// filterTable lists the complete wire pair of every filter option.
var filterTable = map[Filter]FilterWire{
	Bilinear:       {Filter: FilterBilinearConst, Aniso: 0},
	Trilinear:      {Filter: FilterTrilinearConst, Aniso: 0},
	Anisotropic2x:  {Filter: FilterBilinearConst, Aniso: 2},
	Anisotropic4x:  {Filter: FilterBilinearConst, Aniso: 4},
	Anisotropic8x:  {Filter: FilterBilinearConst, Aniso: 8},
	Anisotropic16x: {Filter: FilterBilinearConst, Aniso: 16},
}

// decodeFilter rebuilds the option from the (filter, aniso) pair. Any
// anisotropy of 2 or more wins over the filter constant and is rounded down
// to the nearest offered level, since the engine clamps anisotropy to the
// hardware maximum and defaults to trilinear with 16x.
func decodeFilter(w FilterWire) Value {
	if w.Filter != FilterBilinearConst && w.Filter != FilterTrilinearConst {
		return Unrecognized
	}
	switch {
	case w.Aniso < 0:
		return Unrecognized
	case w.Aniso >= 16:
		return Anisotropic16x
	case w.Aniso >= 8:
		return Anisotropic8x
	case w.Aniso >= 4:
		return Anisotropic4x
	case w.Aniso >= 2:
		return Anisotropic2x
	case w.Filter == FilterTrilinearConst:
		return Trilinear
	default:
		return Bilinear
	}
}

// TextureQuality is the texture resolution level.
type TextureQuality int

const (
	QualityLow TextureQuality = iota
	QualityMedium
	QualityHigh
)

func (q TextureQuality) String() string {
	switch q {
	case QualityLow:
		return "Low"
	case QualityMedium:
		return "Medium"
	default:
		return "High"
	}
}

// Texture resolution travels as a downscale divisor: the engine divides each
// texture dimension by it, so a lower wire number means a higher quality.
//
//	High   = 1 (full size)
//	Medium = 2
//	Low    = 4
//
// Decoding projects every positive divisor onto the nearest level at or below
// its quality (2..3 Medium, 4 and up Low). The engine rejects 0.
var qualityDivisors = map[TextureQuality]int{
	QualityHigh:   1,
	QualityMedium: 2,
	QualityLow:    4,
}

func decodeQuality(w TextureResolutionWire) Value {
	switch {
	case w.Res <= 0:
		return Unrecognized
	case w.Res == 1:
		return QualityHigh
	case w.Res < 4:
		return QualityMedium
	default:
		return QualityLow
	}
}

var filterDescriptor = Descriptor{
	Key:   TextureFilter,
	Label: "Filtering",
	Path:  "filter",
	Domain: []Value{
		Bilinear, Trilinear,
		Anisotropic2x, Anisotropic4x, Anisotropic8x, Anisotropic16x,
	},
	Default: Bilinear,
	Policy:  Deferred,
	Codec: codec[FilterWire]{
		encode: func(v Value) (FilterWire, bool) {
			f, ok := v.(Filter)
			if !ok {
				return FilterWire{}, false
			}
			w, ok := filterTable[f]
			return w, ok
		},
		decode: decodeFilter,
	},
}

var textureResolutionDescriptor = Descriptor{
	Key:     TextureResolution,
	Label:   "Resolution",
	Path:    "resolution",
	Domain:  []Value{QualityLow, QualityMedium, QualityHigh},
	Default: QualityMedium,
	Policy:  Deferred,
	Codec: codec[TextureResolutionWire]{
		encode: func(v Value) (TextureResolutionWire, bool) {
			q, ok := v.(TextureQuality)
			if !ok {
				return TextureResolutionWire{}, false
			}
			res, ok := qualityDivisors[q]
			return TextureResolutionWire{Res: res}, ok
		},
		decode: decodeQuality,
	},
}

// Texture groups the texture sampling settings.
var Texture = Group{
	Key:      GroupTexture,
	Label:    "Texture",
	BasePath: "texture/",
	Members:  []Descriptor{filterDescriptor, textureResolutionDescriptor},
}
