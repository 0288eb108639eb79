package router

// history is a browser-style session history of document paths. The empty
// path is the welcome screen.
type history struct {
	entries []string
	index   int
}

func (h *history) push(path string) {
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.index+1]
		if h.entries[h.index] == path {
			return
		}
	}
	h.entries = append(h.entries, path)
	h.index = len(h.entries) - 1
}

// peek returns the entry delta steps from the current one without moving.
func (h *history) peek(delta int) (int, string, bool) {
	i := h.index + delta
	if len(h.entries) == 0 || i < 0 || i >= len(h.entries) {
		return 0, "", false
	}
	return i, h.entries[i], true
}

// seek moves to entry i if it still holds path. Entries may have been
// truncated by a push since the caller peeked.
func (h *history) seek(i int, path string) {
	if i >= 0 && i < len(h.entries) && h.entries[i] == path {
		h.index = i
	}
}

func (h *history) canBack() bool    { return h.index > 0 && len(h.entries) > 0 }
func (h *history) canForward() bool { return h.index < len(h.entries)-1 }
