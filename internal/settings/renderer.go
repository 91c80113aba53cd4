package settings

import "strconv"

const (
	RendererAntialiasing     Key = "renderer.aa"
	RendererShadowResolution Key = "renderer.shadowResolution"
)

// Antialiasing is the renderer antialiasing mode. The numeric value is the
// wire value.
type Antialiasing int

const (
	NoAA Antialiasing = iota
	FXAA
	MSAAx2
	MSAAx4
	MSAAx8
	MSAAx16
)

var aaLabels = [...]string{"None", "FXAA", "2x MSAA", "4x MSAA", "8x MSAA", "16x MSAA"}

func (a Antialiasing) String() string {
	if a < NoAA || a > MSAAx16 {
		return "Antialiasing(" + strconv.Itoa(int(a)) + ")"
	}
	return aaLabels[a]
}

// ShadowQuality is the edge length of the shadow map in texels.
type ShadowQuality int

func (s ShadowQuality) String() string {
	return strconv.Itoa(int(s))
}

var antialiasingDescriptor = Descriptor{
	Key:     RendererAntialiasing,
	Label:   "Antialiasing",
	Path:    "aa",
	Domain:  []Value{NoAA, FXAA, MSAAx2, MSAAx4, MSAAx8, MSAAx16},
	Default: MSAAx4,
	Policy:  Deferred,
	Codec: codec[AntialiasingWire]{
		encode: func(v Value) (AntialiasingWire, bool) {
			a, ok := v.(Antialiasing)
			return AntialiasingWire{AA: int(a)}, ok && a >= NoAA && a <= MSAAx16
		},
		decode: func(w AntialiasingWire) Value {
			a := Antialiasing(w.AA)
			if a < NoAA || a > MSAAx16 {
				return Unrecognized
			}
			return a
		},
	},
}

var shadowDomain = []Value{ShadowQuality(512), ShadowQuality(1024), ShadowQuality(2048), ShadowQuality(4096)}

var shadowResolutionDescriptor = Descriptor{
	Key:     RendererShadowResolution,
	Label:   "Shadow Resolution",
	Path:    "shadowResolution",
	Domain:  shadowDomain,
	Default: ShadowQuality(1024),
	Policy:  Deferred,
	Codec: codec[ShadowResolutionWire]{
		encode: func(v Value) (ShadowResolutionWire, bool) {
			s, ok := v.(ShadowQuality)
			return ShadowResolutionWire{ShadowRes: int(s)}, ok
		},
		decode: func(w ShadowResolutionWire) Value {
			for _, v := range shadowDomain {
				if v == ShadowQuality(w.ShadowRes) {
					return v
				}
			}
			return Unrecognized
		},
	},
}

// Renderer groups the settings that require a renderer rebuild.
var Renderer = Group{
	Key:      GroupRenderer,
	Label:    "Renderer",
	BasePath: "renderer/",
	Members:  []Descriptor{antialiasingDescriptor, shadowResolutionDescriptor},
}
