// Command padnav runs a terminal launcher driven by the spatial focus
// engine, and talks to a running instance over the remote bus.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(dispatch(os.Args[1:], os.Stdout))
}

func dispatch(args []string, out io.Writer) int {
	if len(args) == 0 {
		return runCommand(runDemo, nil)
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion(out)
		return 0
	case "--help", "-h", "help":
		printHelp(out)
		return 0
	case "send":
		return runCommand(func(a []string) error { return runSendCommand(a, out) }, args[1:])
	case "focus":
		return runCommand(func(a []string) error { return runFocusCommand(a, out) }, args[1:])
	case "config":
		return runCommand(func(a []string) error { return runConfigCommand(a, out) }, args[1:])
	default:
		return runCommand(runDemo, args)
	}
}

func runCommand(handler func([]string) error, args []string) int {
	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeForError(err)
	}
	return 0
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "padnav - spatial focus navigation for terminal UIs")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "USAGE:")
	fmt.Fprintln(out, "  padnav [FLAGS]                   Run the demo launcher")
	fmt.Fprintln(out, "  padnav send <direction>          Inject a direction into a running instance")
	fmt.Fprintln(out, "  padnav focus                     Print the running instance's selection")
	fmt.Fprintln(out, "  padnav config [check|show|path]  Inspect configuration")
	fmt.Fprintln(out, "  padnav version                   Print version information")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "FLAGS:")
	fmt.Fprintln(out, "  --config <path>     Config file (default ~/.padnav/config.yaml, ./.padnav/config.yaml)")
	fmt.Fprintln(out, "  --http <addr>       Enable the control server, e.g. 127.0.0.1:7788")
	fmt.Fprintln(out, "  --bus <kind>        Remote input bus: memory or nats")
	fmt.Fprintln(out, "  --no-gamepads       Do not open joystick devices")
	fmt.Fprintln(out, "  --log-level <lvl>   debug, info, warn or error")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "DIRECTIONS:")
	fmt.Fprintln(out, "  left right up down submit back x y tableft tabright tabup tabdown view menu")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "ENVIRONMENT:")
	fmt.Fprintln(out, "  PADNAV_LOG_LEVEL, PADNAV_BUS, PADNAV_NATS_URL, PADNAV_HTTP_ENABLED, PADNAV_HTTP_ADDR,")
	fmt.Fprintln(out, "  PADNAV_INITIAL_DEBOUNCE, PADNAV_FAST_DEBOUNCE, PADNAV_JOYSTICK_THRESHOLD, PADNAV_TRACING")
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "padnav %s\n", version)
	if commit != "unknown" {
		fmt.Fprintf(out, "  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Fprintf(out, "  Built:      %s\n", buildDate)
	}
	fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
}
