// Package spinning shows a spinning symbol, with an optional message, while the solver works. It also
// handles interruptions (Ctrl+C) so searches can be cancelled cleanly.
package spinning

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

// Spinning display running on its own goroutine, until Done is called.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
}

var (
	ThemeAscii = []rune("|/-\\")
	ThemeSuits = []rune("♣♦♥♠")
	ThemeClock = []rune("🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛")

	// Theme defaults to ThemeSuits, but it can be set to anything else before calling New.
	Theme = ThemeSuits

	// Period between updates of the spinning symbol.
	Period = 250 * time.Millisecond
)

// SafeInterrupt captures SIGINT (Ctrl+C) and SIGTERM and calls onInterrupt. If the program hasn't
// exited after gracePeriod, it resets the terminal and exits.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), cancelling... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutdown period of %s expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	fmt.Print("\033[?25h\033[39;49;0m\n")
}

// New starts a spinning display, preceded by msg, that runs until Spinning.Done is called or ctx is
// cancelled. The elapsed time is shown after the symbol.
func New(ctx context.Context, msg string) *Spinning {
	s := &Spinning{}
	ctx, s.cancel = context.WithCancel(ctx)
	theme := Theme
	start := time.Now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Period)
		defer ticker.Stop()
		fmt.Print("\033[?25l")       // Hide cursor.
		defer fmt.Print("\033[?25h") // Restore cursor.

		var idx int
		for {
			fmt.Printf("\r%s %c %s\033[0K", msg, theme[idx], time.Since(start).Truncate(time.Second))
			idx = (idx + 1) % len(theme)
			select {
			case <-ctx.Done():
				fmt.Print("\r\033[0K")
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// Done stops the spinning display and waits for it to clear the line.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
