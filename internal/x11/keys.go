package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// KeyName returns the keysym name for a key event, honouring Shift and
// Lock. Unknown keys yield "".
func (c *Connection) KeyName(state uint16, code xproto.Keycode) string {
	return keybind.LookupString(c.XUtil, state, code)
}

// ModMasks holds the server's modifier bits for the logical modifiers.
type ModMasks struct {
	Shift uint16
	Ctrl  uint16
	Alt   uint16
	Super uint16
}

// ModMasks resolves Alt and Super through the current modifier mapping,
// falling back to the conventional Mod1 and Mod4.
func (c *Connection) ModMasks() ModMasks {
	masks := ModMasks{
		Shift: xproto.ModMaskShift,
		Ctrl:  xproto.ModMaskControl,
		Alt:   modMaskForKeysym(c.XUtil, "Alt_L"),
		Super: modMaskForKeysym(c.XUtil, "Super_L"),
	}
	if masks.Alt == 0 {
		masks.Alt = xproto.ModMask1
	}
	if masks.Super == 0 {
		masks.Super = xproto.ModMask4
	}
	return masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
