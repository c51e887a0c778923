package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorEnabled resolves a color mode (auto, always, never) for w. In auto
// mode color is used only on a terminal and only when NO_COLOR is unset.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
