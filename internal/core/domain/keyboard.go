package domain

type Button struct {
	Text string
	Data string
}

// Keyboard is a list of button rows attached to an outbound message.
type Keyboard [][]Button

// Grid lays buttons out in rows of the given width.
func Grid(width int, buttons ...Button) Keyboard {
	if width < 1 {
		width = 1
	}
	var kb Keyboard
	for len(buttons) > 0 {
		n := min(width, len(buttons))
		kb = append(kb, buttons[:n:n])
		buttons = buttons[n:]
	}
	return kb
}
