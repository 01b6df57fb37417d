package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

const pointerEvents = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// BlankCursor creates an invisible cursor from a cleared 1x1 bitmap.
func (c *Connection) BlankCursor() (xproto.Cursor, error) {
	conn := c.Conn()

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(c.Root), 1, 1).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor bitmap: %w", err)
	}
	defer xproto.FreePixmap(conn, pix)

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(pix), xproto.GcForeground, []uint32{0}).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor gc: %w", err)
	}
	defer xproto.FreeGC(conn, gc)
	err = xproto.PolyFillRectangleChecked(conn, xproto.Drawable(pix), gc, []xproto.Rectangle{{Width: 1, Height: 1}}).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to clear cursor bitmap: %w", err)
	}

	cid, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateCursorChecked(conn, cid, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor: %w", err)
	}
	return cid, nil
}

// SetCursor sets the window's cursor; 0 inherits the parent's.
func (c *Connection) SetCursor(wid xproto.Window, cursor xproto.Cursor) error {
	return xproto.ChangeWindowAttributesChecked(c.Conn(), wid, xproto.CwCursor, []uint32{uint32(cursor)}).Check()
}

// ConfinePointer grabs the pointer and keeps it inside wid, showing the
// window's own cursor. The window must be viewable.
func (c *Connection) ConfinePointer(wid xproto.Window) error {
	reply, err := xproto.GrabPointer(
		c.Conn(),
		true,
		wid,
		uint16(pointerEvents),
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		wid,
		0,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("pointer grab refused (status %d)", reply.Status)
	}
	return nil
}

// ReleasePointer ends a grab made by ConfinePointer.
func (c *Connection) ReleasePointer() error {
	return xproto.UngrabPointerChecked(c.Conn(), xproto.TimeCurrentTime).Check()
}
