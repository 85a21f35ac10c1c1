package dashboard

// Keys binds operator input to dashboard actions. Digits 1-9 are reserved for
// row selection on the list screen.
type Keys struct {
	Quit     rune // leave the dashboard from the list screen
	Back     rune // leave the detail screen
	Mode     rune
	Sort     rune
	User     rune
	NextPage rune
	PrevPage rune
	Kill     rune // open the kill confirmation from the detail screen
	SendKill rune
	SendTerm rune
}

// DefaultKeys mirrors the classic layout: ~ quits, e/q page, m/s/u cycle.
func DefaultKeys() Keys {
	return Keys{
		Quit:     '~',
		Back:     'q',
		Mode:     'm',
		Sort:     's',
		User:     'u',
		NextPage: 'e',
		PrevPage: 'q',
		Kill:     'k',
		SendKill: 'k',
		SendTerm: 't',
	}
}

func isRowKey(r rune) bool {
	return r >= '1' && r <= '9'
}
