package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
)

// WakeAtom is the private ClientMessage type used to wake a blocked event
// loop from another goroutine.
const WakeAtom = "_WINPUMP_WAKE"

// ClassAtoms are interned once per display when a window class is first
// registered.
var ClassAtoms = []string{"WM_PROTOCOLS", "WM_DELETE_WINDOW", "WM_TAKE_FOCUS", WakeAtom}

// EventMask is the set of events a top-level window listens for.
const EventMask = xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskFocusChange

// WindowOptions describes a top-level window to create.
type WindowOptions struct {
	X, Y          int
	Width, Height int
	HasPosition   bool
	Title         string
	ClassName     string
	Resizable     bool
	Decorations   bool
	Icon          image.Image
}

// CreateWindow creates an unmapped top-level window with the event mask,
// WM protocols and hints described by opts.
func (c *Connection) CreateWindow(opts WindowOptions) (xproto.Window, error) {
	conn := c.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	// Value list order follows the bit positions of the mask (low → high).
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		int16(opts.X), int16(opts.Y),
		uint16(opts.Width), uint16(opts.Height),
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.BlackPixel, EventMask},
	).Check()
	if err != nil {
		return 0, err
	}

	if err := icccm.WmProtocolsSet(c.XUtil, wid, []string{"WM_DELETE_WINDOW", "WM_TAKE_FOCUS"}); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	if err := icccm.WmClassSet(c.XUtil, wid, &icccm.WmClass{Instance: opts.ClassName, Class: opts.ClassName}); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, fmt.Errorf("failed to set WM_CLASS: %w", err)
	}
	if err := c.SetTitle(wid, opts.Title); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, err
	}
	if err := c.setNormalHints(wid, opts); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, err
	}
	if !opts.Decorations {
		// Not every window manager honours Motif hints; failure is harmless.
		c.SetDecorations(wid, false)
	}
	if opts.Icon != nil {
		c.SetIcon(wid, opts.Icon)
	}

	return wid, nil
}

// setNormalHints publishes requested position and, for fixed-size windows,
// identical min and max sizes.
func (c *Connection) setNormalHints(wid xproto.Window, opts WindowOptions) error {
	hints := &icccm.NormalHints{
		Flags:  icccm.SizeHintPSize,
		Width:  uint(opts.Width),
		Height: uint(opts.Height),
	}
	if opts.HasPosition {
		hints.Flags |= icccm.SizeHintUSPosition
		hints.X = opts.X
		hints.Y = opts.Y
	}
	if !opts.Resizable {
		hints.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		hints.MinWidth, hints.MaxWidth = uint(opts.Width), uint(opts.Width)
		hints.MinHeight, hints.MaxHeight = uint(opts.Height), uint(opts.Height)
	}
	if err := icccm.WmNormalHintsSet(c.XUtil, wid, hints); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}
	return nil
}

// SetSizeHints republishes WM_NORMAL_HINTS after a programmatic resize so
// a fixed-size window stays fixed at its new size.
func (c *Connection) SetSizeHints(wid xproto.Window, width, height int, resizable bool) error {
	return c.setNormalHints(wid, WindowOptions{Width: width, Height: height, Resizable: resizable})
}

// Move places the window's outer corner at x, y in root coordinates.
func (c *Connection) Move(wid xproto.Window, x, y int) error {
	return xproto.ConfigureWindowChecked(
		c.Conn(),
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))},
	).Check()
}

// Resize sets the window's inner size.
func (c *Connection) Resize(wid xproto.Window, width, height int) error {
	return xproto.ConfigureWindowChecked(
		c.Conn(),
		wid,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	).Check()
}

// SetFullscreen adds or removes _NET_WM_STATE_FULLSCREEN. A mapped window
// asks the window manager; an unmapped one edits the property it reads on
// map.
func (c *Connection) SetFullscreen(wid xproto.Window, on, mapped bool) error {
	const state = "_NET_WM_STATE_FULLSCREEN"
	if mapped {
		action := ewmh.StateRemove
		if on {
			action = ewmh.StateAdd
		}
		return ewmh.WmStateReq(c.XUtil, wid, action, state)
	}

	// A window that never had the property reports an error here.
	current, _ := ewmh.WmStateGet(c.XUtil, wid)
	states := make([]string, 0, len(current)+1)
	for _, s := range current {
		if s != state {
			states = append(states, s)
		}
	}
	if on {
		states = append(states, state)
	}
	return ewmh.WmStateSet(c.XUtil, wid, states)
}

// SetTitle sets both the EWMH (UTF-8) and ICCCM window names.
func (c *Connection) SetTitle(wid xproto.Window, title string) error {
	if err := ewmh.WmNameSet(c.XUtil, wid, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(c.XUtil, wid, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	return nil
}

// SetDecorations asks the window manager to draw or drop its frame.
func (c *Connection) SetDecorations(wid xproto.Window, on bool) error {
	hints := &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	}
	if on {
		hints.Decoration = motif.DecorationAll
	}
	return motif.WmHintsSet(c.XUtil, wid, hints)
}

// SetIcon publishes img as _NET_WM_ICON (ARGB, row-major).
func (c *Connection) SetIcon(wid xproto.Window, img image.Image) error {
	b := img.Bounds()
	data := make([]uint, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			data = append(data, uint(a>>8)<<24|uint(r>>8)<<16|uint(g>>8)<<8|uint(bl>>8))
		}
	}
	return ewmh.WmIconSet(c.XUtil, wid, []ewmh.WmIcon{{
		Width:  uint(b.Dx()),
		Height: uint(b.Dy()),
		Data:   data,
	}})
}

// Map makes the window visible.
func (c *Connection) Map(wid xproto.Window) error {
	return xproto.MapWindowChecked(c.Conn(), wid).Check()
}

// Unmap hides the window.
func (c *Connection) Unmap(wid xproto.Window) error {
	return xproto.UnmapWindowChecked(c.Conn(), wid).Check()
}

// Redraw clears the window and asks the server for an Expose event.
func (c *Connection) Redraw(wid xproto.Window) error {
	return xproto.ClearAreaChecked(c.Conn(), true, wid, 0, 0, 0, 0).Check()
}

// DestroyWindow destroys the window; a DestroyNotify follows.
func (c *Connection) DestroyWindow(wid xproto.Window) error {
	return xproto.DestroyWindowChecked(c.Conn(), wid).Check()
}

// PostWake sends a wake ClientMessage to wid. It only queues a request on
// the connection and never touches window state, so it may be called from
// any goroutine.
func (c *Connection) PostWake(wid xproto.Window) error {
	atom, err := c.Atom(WakeAtom)
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wid,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.Conn(),
		false,
		wid,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// IsWake reports whether ev is a wake message posted by PostWake.
func (c *Connection) IsWake(ev xproto.ClientMessageEvent) bool {
	atom, err := c.Atom(WakeAtom)
	return err == nil && ev.Type == atom
}

// IsDelete reports whether ev is a WM_DELETE_WINDOW request.
func (c *Connection) IsDelete(ev xproto.ClientMessageEvent) bool {
	return icccm.IsDeleteProtocol(c.XUtil, xevent.ClientMessageEvent{ClientMessageEvent: &ev})
}

// WindowBounds returns the window's inner geometry in root coordinates.
func (c *Connection) WindowBounds(wid xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(wid)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.Conn(),
		wid,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}
