package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ErrClosed is returned by WaitForEvent once the connection is gone.
var ErrClosed = errors.New("x11 connection closed")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Display string
}

// NewConnection connects using $DISPLAY.
func NewConnection() (*Connection, error) {
	return NewConnectionDisplay("")
}

// NewConnectionDisplay establishes a connection to the named X server and
// initializes the keyboard mapping used for key translation.
func NewConnectionDisplay(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for keysym lookup)
	keybind.Initialize(xu)

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		Display: display,
	}, nil
}

// Conn returns the raw xgb connection.
func (c *Connection) Conn() *xgb.Conn {
	return c.XUtil.Conn()
}

// WaitForEvent blocks until the server delivers an event. Protocol errors
// for asynchronous requests are returned as xgb.Error with a nil event.
func (c *Connection) WaitForEvent() (xgb.Event, error) {
	ev, xerr := c.Conn().WaitForEvent()
	if ev == nil && xerr == nil {
		return nil, ErrClosed
	}
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// Atoms are server-wide, so interned values are shared by every connection
// to the same display for the life of the process.
var atomCache = struct {
	mu    sync.Mutex
	atoms map[string]map[string]xproto.Atom
}{atoms: make(map[string]map[string]xproto.Atom)}

// Atom interns name, consulting the process-wide cache first.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	atomCache.mu.Lock()
	if atom, ok := atomCache.atoms[c.Display][name]; ok {
		atomCache.mu.Unlock()
		return atom, nil
	}
	atomCache.mu.Unlock()

	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}

	atomCache.mu.Lock()
	defer atomCache.mu.Unlock()
	if atomCache.atoms[c.Display] == nil {
		atomCache.atoms[c.Display] = make(map[string]xproto.Atom)
	}
	atomCache.atoms[c.Display][name] = atom
	return atom, nil
}

// ErrorCode maps an X protocol error to its core error code, 0 if err is
// not a core protocol error.
func ErrorCode(err error) int {
	switch err.(type) {
	case xproto.RequestError:
		return xproto.BadRequest
	case xproto.ValueError:
		return xproto.BadValue
	case xproto.WindowError:
		return xproto.BadWindow
	case xproto.PixmapError:
		return xproto.BadPixmap
	case xproto.AtomError:
		return xproto.BadAtom
	case xproto.CursorError:
		return xproto.BadCursor
	case xproto.MatchError:
		return xproto.BadMatch
	case xproto.DrawableError:
		return xproto.BadDrawable
	case xproto.AccessError:
		return xproto.BadAccess
	case xproto.AllocError:
		return xproto.BadAlloc
	case xproto.ColormapError:
		return xproto.BadColormap
	case xproto.IDChoiceError:
		return xproto.BadIDChoice
	case xproto.LengthError:
		return xproto.BadLength
	case xproto.ImplementationError:
		return xproto.BadImplementation
	default:
		return 0
	}
}
