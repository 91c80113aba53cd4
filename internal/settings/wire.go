package settings

// Wire bodies exchanged with the engine, one per endpoint.

type VSyncWire struct {
	VSync bool `json:"vsync"`
}

type FullScreenWire struct {
	FullScreen bool `json:"fullScreen"`
}

type SizeWire struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FilterWire carries the texture minification filter constant and the
// anisotropy level. Both fields together form one domain value.
type FilterWire struct {
	Filter int `json:"filter"`
	Aniso  int `json:"aniso"`
}

// TextureResolutionWire carries the texture downscale divisor.
type TextureResolutionWire struct {
	Res int `json:"res"`
}

type AntialiasingWire struct {
	AA int `json:"aa"`
}

type ShadowResolutionWire struct {
	ShadowRes int `json:"shadowRes"`
}

// codec adapts a pair of typed functions to the Codec interface.
type codec[W any] struct {
	encode func(Value) (W, bool)
	decode func(W) Value
}

func (c codec[W]) Encode(v Value) (any, error) {
	w, ok := c.encode(v)
	if !ok {
		return nil, ErrOutOfDomain
	}
	return w, nil
}

func (c codec[W]) NewWire() any {
	return new(W)
}

func (c codec[W]) Decode(wire any) Value {
	w, ok := wireAs[W](wire)
	if !ok {
		return Unrecognized
	}
	return c.decode(w)
}

func wireAs[W any](wire any) (W, bool) {
	switch w := wire.(type) {
	case W:
		return w, true
	case *W:
		if w != nil {
			return *w, true
		}
	}
	var zero W
	return zero, false
}
