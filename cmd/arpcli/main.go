// Command arpcli runs the MIDI arpeggiator engine against real
// devices: it resolves input/output MIDI ports (auto-discovered or
// named on the command line), loads a settings table, and drives the
// dispatcher until its input closes or the process is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"github.com/davidlang42/midi-arpeggiator/arperr"
	"github.com/davidlang42/midi-arpeggiator/console"
	"github.com/davidlang42/midi-arpeggiator/dispatcher"
	"github.com/davidlang42/midi-arpeggiator/settings"
	"github.com/davidlang42/midi-arpeggiator/status"
	"github.com/davidlang42/midi-arpeggiator/transport"
	"gitlab.com/gomidi/midi/v2"
)

const (
	defaultSettingsPath = "settings.json"
	queueCapacity       = 256
)

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func main() {
	scriptFile := flag.String("script", "", "execute console commands from file")
	dumpSMF := flag.String("dump-smf", "", "write 30s of inbound note traffic, from the first note, to this .mid file, then continue")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	settingsPath, inName, outName, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	router, err := settings.LoadRouter(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}

	ins, outs, err := transport.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing MIDI ports: %v\n", err)
		os.Exit(1)
	}
	if len(ins) == 0 || len(outs) == 0 {
		fmt.Fprintln(os.Stderr, "No MIDI input/output ports found")
		os.Exit(1)
	}

	inIndex, outIndex, err := resolvePorts(ins, outs, inName, outName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting MIDI ports: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Using input %d: %s\nUsing output %d: %s\n\n", inIndex, ins[inIndex], outIndex, outs[outIndex])
	logger.Info("opening MIDI ports", "in", ins[inIndex], "out", outs[outIndex])

	output, err := transport.OpenOutput(outIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening MIDI output: %v\n", err)
		os.Exit(1)
	}
	defer output.Close()

	queue := make(chan midi.Message, queueCapacity)
	input, err := transport.OpenInput(inIndex, queue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening MIDI input: %v\n", err)
		os.Exit(1)
	}
	defer input.Close()

	signalLog := status.NewTextLog(func(format string, args ...any) { fmt.Printf(format, args...) })
	reader := dispatcher.FuncReader(transport.Read)

	var receivers []dispatcher.Receiver
	if *dumpSMF != "" {
		receivers = append(receivers, newSMFDumper(*dumpSMF, logger))
	}

	d := dispatcher.New(reader, queue, output, router, signalLog, receivers...)

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()

	handler := console.New(d, settingsPath)
	success, shouldExit := true, false

	switch {
	case *scriptFile != "":
		f, ferr := os.Open(*scriptFile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "Error opening script file: %v\n", ferr)
			cancel()
			os.Exit(2)
		}
		success, shouldExit = console.ProcessBatchInput(f, handler)
		f.Close()
		if !shouldExit {
			fmt.Println("\nScript completed. Engine continues running. Press Ctrl+C to exit.")
			<-ctx.Done()
		}
	case isTerminal():
		fmt.Println("Arpeggiator running. Type 'help' for commands, 'quit' to exit.")
		if rerr := handler.ReadLoop(os.Stdin); rerr != nil {
			fmt.Fprintf(os.Stderr, "Error reading commands: %v\n", rerr)
			success = false
		}
		shouldExit = true
	default:
		success, shouldExit = console.ProcessBatchInput(os.Stdin, handler)
		if !shouldExit {
			<-ctx.Done()
		}
	}

	cancel()
	runErr := <-runDone
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, arperr.ErrTransportClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
	if !success {
		os.Exit(1)
	}
	os.Exit(0)
}

// parseArgs interprets the CLI's single optional positional argument
// (a settings file path, or a device-count integer of 1 or 2) or two
// positional arguments (explicit input and output device names),
// matching the external-interface contract.
func parseArgs(args []string) (settingsPath, inName, outName string, err error) {
	switch len(args) {
	case 0:
		return defaultSettingsPath, "", "", nil
	case 1:
		if n, convErr := strconv.Atoi(args[0]); convErr == nil {
			if n != 1 && n != 2 {
				return "", "", "", fmt.Errorf("device-count argument must be 1 or 2, got %d", n)
			}
			return defaultSettingsPath, "", "", nil
		}
		return args[0], "", "", nil
	case 2:
		return defaultSettingsPath, args[0], args[1], nil
	default:
		return "", "", "", fmt.Errorf("too many arguments: expected at most 2, got %d", len(args))
	}
}

// resolvePorts picks the input/output port indices to open: an exact
// or substring match against the requested names, auto-selection of
// the sole available port, or an interactive readline prompt when
// several ports are available and no name was given.
func resolvePorts(ins, outs []string, inName, outName string) (inIndex, outIndex int, err error) {
	if inIndex, err = resolvePort(ins, inName, "input"); err != nil {
		return 0, 0, err
	}
	if outIndex, err = resolvePort(outs, outName, "output"); err != nil {
		return 0, 0, err
	}
	return inIndex, outIndex, nil
}

func resolvePort(ports []string, name, label string) (int, error) {
	if name != "" {
		for i, p := range ports {
			if p == name || strings.Contains(p, name) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no %s port matching %q (available: %s)", label, name, strings.Join(ports, ", "))
	}
	if len(ports) == 1 || !isTerminal() {
		return 0, nil
	}
	fmt.Printf("Available %s ports:\n", label)
	for i, p := range ports {
		fmt.Printf("  %d: %s\n", i, p)
	}
	rl, rlErr := readline.New(fmt.Sprintf("Select %s port (0-%d): ", label, len(ports)-1))
	if rlErr != nil {
		return 0, fmt.Errorf("creating readline prompt: %w", rlErr)
	}
	defer rl.Close()
	line, rlErr := rl.Readline()
	if rlErr != nil {
		return 0, fmt.Errorf("reading port selection: %w", rlErr)
	}
	index, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil || index < 0 || index >= len(ports) {
		return 0, fmt.Errorf("invalid %s port selection: %s", label, line)
	}
	return index, nil
}
