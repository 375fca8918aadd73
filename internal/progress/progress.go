// Package progress renders a coarse inline progress bar, gated on TTY
// detection so batch/CI runs get a single summary line instead of a
// scrolling wall of carriage returns.
package progress

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const barWidth = 30

var isTTY = sync.OnceValue(func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
})

// Report renders an inline progress bar on TTY, or a single plain line
// otherwise. Pass current == total to render the final state.
func Report(name string, current, total int) {
	if total <= 0 {
		return
	}
	if !isTTY() {
		if current == total {
			fmt.Printf("[%s] %d/%d done\n", name, current, total)
		}
		return
	}

	pct := float64(current) / float64(total)
	filled := int(pct * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	if current >= total {
		fmt.Printf("\r[%s] %s %d/%d (100%%)\n", name, bar, current, total)
		return
	}
	fmt.Printf("\r[%s] %s %d/%d (%.0f%%)", name, bar, current, total, pct*100)
}
