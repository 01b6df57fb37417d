package window

import "maps"

// input is an immutable snapshot of held keys and buttons. The pump
// replaces it before queueing the input message that changed it.
type input struct {
	codes   map[uint32]struct{}
	names   map[string]struct{}
	buttons map[int]struct{}
	mods    Modifiers
}

func (in *input) withKey(code uint32, name string, pressed bool, mods Modifiers) *input {
	next := &input{
		codes:   maps.Clone(in.codes),
		names:   maps.Clone(in.names),
		buttons: in.buttons,
		mods:    heldModifiers(mods, name, pressed),
	}
	if next.codes == nil {
		next.codes = make(map[uint32]struct{})
	}
	if next.names == nil {
		next.names = make(map[string]struct{})
	}
	if pressed {
		next.codes[code] = struct{}{}
		if name != "" {
			next.names[name] = struct{}{}
		}
	} else {
		delete(next.codes, code)
		delete(next.names, name)
	}
	return next
}

func (in *input) withButton(button int, pressed bool, mods Modifiers) *input {
	next := &input{
		codes:   in.codes,
		names:   in.names,
		buttons: maps.Clone(in.buttons),
		mods:    mods,
	}
	if next.buttons == nil {
		next.buttons = make(map[int]struct{})
	}
	if pressed {
		next.buttons[button] = struct{}{}
	} else {
		delete(next.buttons, button)
	}
	return next
}

func (in *input) withMods(mods Modifiers) *input {
	if in.mods == mods {
		return in
	}
	next := *in
	next.mods = mods
	return &next
}

// heldModifiers corrects the event's modifier mask, which X reports as it
// was before the event, for a modifier key that just changed.
func heldModifiers(mods Modifiers, name string, pressed bool) Modifiers {
	var bit Modifiers
	switch name {
	case "Shift_L", "Shift_R":
		bit = ModShift
	case "Control_L", "Control_R":
		bit = ModCtrl
	case "Alt_L", "Alt_R", "Meta_L", "Meta_R":
		bit = ModAlt
	case "Super_L", "Super_R", "Hyper_L", "Hyper_R":
		bit = ModSuper
	}
	if pressed {
		return mods | bit
	}
	return mods &^ bit
}

func stateOf(held bool) ButtonState {
	if held {
		return Pressed
	}
	return Released
}

// Key reports whether the key with the given keysym name, such as "a" or
// "Escape", is held.
func (w *Window) Key(name string) ButtonState {
	_, held := w.input.Load().names[name]
	return stateOf(held)
}

// KeyCode reports whether the key with the given native code is held.
func (w *Window) KeyCode(code uint32) ButtonState {
	_, held := w.input.Load().codes[code]
	return stateOf(held)
}

// Mouse reports whether a mouse button is held. Buttons are numbered as in
// MouseButton messages.
func (w *Window) Mouse(button int) ButtonState {
	_, held := w.input.Load().buttons[button]
	return stateOf(held)
}

// Modifiers returns the modifier keys held as of the last input message.
func (w *Window) Modifiers() Modifiers {
	return w.input.Load().mods
}
