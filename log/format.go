package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
)

var levelColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// TerminalFormat renders records for an interactive console: a colorized
// level tag, timestamp, message, then "k=v" pairs. Output is routed through
// mattn/go-colorable so ANSI codes degrade gracefully on non-ANSI Windows
// consoles.
func TerminalFormat() Format { return terminalFormat{} }

type terminalFormat struct{}

func (terminalFormat) Format(r *Record) []byte {
	var b strings.Builder
	tag := levelColor[r.Lvl].Sprintf("%-5s", r.Lvl)
	fmt.Fprintf(&b, "%s[%s] %s", tag, r.Time.Format("15:04:05.000"), r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%v", r.Ctx[i], r.Ctx[i+1])
	}
	if r.Call.Frame().Function != "" && r.Lvl <= LvlError {
		fmt.Fprintf(&b, " caller=%v", r.Call)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// LogfmtFormat renders records as plain, uncolored logfmt — used when
// output isn't a terminal (e.g. redirected to a file or journal).
func LogfmtFormat() Format { return logfmtFormat{} }

type logfmtFormat struct{}

func (logfmtFormat) Format(r *Record) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%s lvl=%s msg=%q", r.Time.Format("2006-01-02T15:04:05.000Z07:00"), r.Lvl, r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%q", r.Ctx[i], fmt.Sprint(r.Ctx[i+1]))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// ColorableStderr wraps os.Stderr for use with TerminalFormat, using
// mattn/go-colorable to keep ANSI handling consistent across platforms.
func ColorableStderr() io.Writer { return colorable.NewColorableStderr() }
