// Package logger prints tagged, optionally coloured console lines.
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

var (
	mu       sync.Mutex
	useColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
)

// SetColor forces coloured output on or off.
func SetColor(enabled bool) {
	mu.Lock()
	useColor = enabled
	mu.Unlock()
}

func paint(color, s string) string {
	if !useColor {
		return s
	}
	return color + s + colorReset
}

func line(color, level, tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(os.Stdout, "%s %s %s %s\n",
		paint(colorGray, ts),
		paint(color, fmt.Sprintf("%-5s", level)),
		paint(colorBold, "["+tag+"]"),
		msg,
	)
}

// Info logs a neutral progress message.
func Info(tag, msg string) { line(colorCyan, "INFO", tag, msg) }

// Success logs a completed step.
func Success(tag, msg string) { line(colorGreen, "OK", tag, msg) }

// Warn logs a recoverable problem.
func Warn(tag, msg string) { line(colorYellow, "WARN", tag, msg) }

// Error logs a failed operation.
func Error(tag, msg string) { line(colorRed, "ERROR", tag, msg) }

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(os.Stdout, paint(colorBold, "  BorderHopper "+version))
	fmt.Fprintln(os.Stdout, paint(colorGray, "  connect the map, one border at a time"))
	fmt.Fprintln(os.Stdout)
}

// Section prints a heading for a group of Stats lines.
func Section(title string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(os.Stdout, "\n%s\n", paint(colorBold, "── "+title+" ──"))
}

// Stats prints an aligned key/value line.
func Stats(key string, value interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(os.Stdout, "  %-22s %v\n", key+":", value)
}

// Server announces the listening address.
func Server(addr string) {
	line(colorGreen, "OK", "Server", "Listening on http://"+addr)
}
