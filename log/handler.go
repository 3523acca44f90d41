package log

import (
	"io"
	"sync"
)

// Format renders a Record to bytes. TerminalFormat and LogfmtFormat are the
// two this package ships: the colorized terminal one plus a minimal logfmt
// fallback for non-tty output.
type Format interface {
	Format(r *Record) []byte
}

// StreamHandler writes formatted records to w, synchronized so concurrent
// goroutines (as InsertValues fans out) don't interleave lines.
func StreamHandler(w io.Writer, fmtr Format) Handler {
	return &streamHandler{w: w, fmtr: fmtr}
}

type streamHandler struct {
	mu   sync.Mutex
	w    io.Writer
	fmtr Format
}

func (h *streamHandler) Log(r *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(h.fmtr.Format(r))
	return err
}

// LvlFilterHandler wraps h so only records at maxLvl or more severe reach it.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return &lvlFilterHandler{maxLvl: maxLvl, h: h}
}

type lvlFilterHandler struct {
	maxLvl Lvl
	h      Handler
}

func (f *lvlFilterHandler) Log(r *Record) error {
	if r.Lvl > f.maxLvl {
		return nil
	}
	return f.h.Log(r)
}
