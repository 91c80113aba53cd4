package settings

import "fmt"

const (
	WindowVSync      Key = "window.vsync"
	WindowFullScreen Key = "window.fullScreen"
	WindowSize       Key = "window.size"
)

// Toggle is an on/off setting.
type Toggle int

const (
	Disabled Toggle = iota
	Enabled
)

func (t Toggle) String() string {
	if t == Enabled {
		return "Enabled"
	}
	return "Disabled"
}

// DisplayMode selects between a window and the primary monitor.
type DisplayMode int

const (
	Windowed DisplayMode = iota
	FullScreen
)

func (m DisplayMode) String() string {
	if m == FullScreen {
		return "Full screen"
	}
	return "Windowed"
}

// Resolution is a window size in pixels.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

var (
	Res1920x1080 = Resolution{Width: 1920, Height: 1080}
	Res1366x768  = Resolution{Width: 1366, Height: 768}
	Res1280x1024 = Resolution{Width: 1280, Height: 1024}
	Res1280x800  = Resolution{Width: 1280, Height: 800}
)

var vsyncDescriptor = Descriptor{
	Key:     WindowVSync,
	Label:   "Vertical Sync",
	Path:    "vsync",
	Domain:  []Value{Disabled, Enabled},
	Default: Disabled,
	Policy:  Immediate,
	Codec: codec[VSyncWire]{
		encode: func(v Value) (VSyncWire, bool) {
			t, ok := v.(Toggle)
			return VSyncWire{VSync: t == Enabled}, ok
		},
		decode: func(w VSyncWire) Value {
			if w.VSync {
				return Enabled
			}
			return Disabled
		},
	},
}

var fullScreenDescriptor = Descriptor{
	Key:     WindowFullScreen,
	Label:   "Display Mode",
	Path:    "fullScreen",
	Domain:  []Value{Windowed, FullScreen},
	Default: Windowed,
	Policy:  Immediate,
	Codec: codec[FullScreenWire]{
		encode: func(v Value) (FullScreenWire, bool) {
			m, ok := v.(DisplayMode)
			return FullScreenWire{FullScreen: m == FullScreen}, ok
		},
		decode: func(w FullScreenWire) Value {
			if w.FullScreen {
				return FullScreen
			}
			return Windowed
		},
	},
}

// The window size only applies to full screen mode; in windowed mode the
// engine keeps the size of the window itself.
var sizeDescriptor = Descriptor{
	Key:     WindowSize,
	Label:   "Resolution",
	Path:    "size",
	Domain:  sizeDomain(),
	Default: Res1920x1080,
	Policy:  Deferred,
	Requires: &Requirement{
		Key:    WindowFullScreen,
		Allows: func(v Value) bool { return v == FullScreen },
	},
	Codec: codec[SizeWire]{
		encode: func(v Value) (SizeWire, bool) {
			r, ok := v.(Resolution)
			return SizeWire{Width: r.Width, Height: r.Height}, ok
		},
		decode: func(w SizeWire) Value {
			r := Resolution{Width: w.Width, Height: w.Height}
			for _, candidate := range sizeDomain() {
				if candidate == r {
					return r
				}
			}
			return Unrecognized
		},
	},
}

func sizeDomain() []Value {
	return []Value{Res1920x1080, Res1366x768, Res1280x1024, Res1280x800}
}

// Window groups the display settings.
var Window = Group{
	Key:      GroupWindow,
	Label:    "Window",
	BasePath: "window/",
	Members:  []Descriptor{fullScreenDescriptor, sizeDescriptor, vsyncDescriptor},
}
