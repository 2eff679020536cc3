// Package console implements the optional interactive debug REPL: a
// local stand-in for a physical bank-select/program-change controller,
// letting a developer switch modes, inspect status, and patch
// individual fields of the settings file without a MIDI controller
// attached. It mirrors the teacher's commands.Handler shape directly.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Dispatcher is the subset of dispatcher.MultiArpeggiator the console
// drives: selecting a settings record by table index, the way a
// physical controller would via bank-select/program-change.
type Dispatcher interface {
	SelectSettings(index int) error
	Status() string
}

// Handler processes a single console command line at a time, matching
// the teacher's commands.Handler: ProcessCommand(line) error, dispatch
// by first word.
type Handler struct {
	dispatcher   Dispatcher
	settingsPath string
}

// New builds a Handler bound to a running dispatcher and the on-disk
// settings file path set-config patches in place.
func New(dispatcher Dispatcher, settingsPath string) *Handler {
	return &Handler{dispatcher: dispatcher, settingsPath: settingsPath}
}

// ProcessCommand parses and executes a single command string.
func (h *Handler) ProcessCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		return h.handleStatus(nil)
	}
	parts := strings.Fields(cmdLine)
	cmd := strings.ToLower(parts[0])
	switch cmd {
	case "status":
		return h.handleStatus(parts)
	case "select":
		return h.handleSelect(parts)
	case "set-config":
		return h.handleSetConfig(parts)
	case "get-config":
		return h.handleGetConfig(parts)
	case "help":
		return h.handleHelp(parts)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (h *Handler) handleStatus(parts []string) error {
	fmt.Println(h.dispatcher.Status())
	return nil
}

// handleSelect: select <index> -- chooses a settings record by table
// index, simulating a bank-select/program-change pair from a physical
// controller.
func (h *Handler) handleSelect(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: select <index>")
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid index: %s", parts[1])
	}
	return h.dispatcher.SelectSettings(index)
}

// handleSetConfig: set-config <json.path> <value> -- patches one field
// of the settings file in place without a full struct round-trip,
// mirroring the teacher's cc commands' targeted-mutation style.
func (h *Handler) handleSetConfig(parts []string) error {
	if len(parts) != 3 {
		return fmt.Errorf("usage: set-config <json.path> <value>")
	}
	data, err := os.ReadFile(h.settingsPath)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}
	value := parseValue(parts[2])
	patched, err := sjson.SetBytes(data, parts[1], value)
	if err != nil {
		return fmt.Errorf("patching %s: %w", parts[1], err)
	}
	if err := os.WriteFile(h.settingsPath, patched, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// handleGetConfig: get-config <json.path> -- reads back one field
// without unmarshalling the whole settings file into Go structs.
func (h *Handler) handleGetConfig(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: get-config <json.path>")
	}
	data, err := os.ReadFile(h.settingsPath)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}
	result := gjson.GetBytes(data, parts[1])
	if !result.Exists() {
		return fmt.Errorf("no value at %s", parts[1])
	}
	fmt.Println(result.String())
	return nil
}

func (h *Handler) handleHelp(parts []string) error {
	fmt.Println("commands: status, select <index>, set-config <path> <value>, get-config <path>, help, exit")
	return nil
}

// parseValue turns a command-line token into the JSON value sjson
// should write: a bool, a number, or (failing both) a bare string.
func parseValue(token string) any {
	if b, err := strconv.ParseBool(token); err == nil {
		return b
	}
	if n, err := strconv.ParseFloat(token, 64); err == nil {
		return n
	}
	return token
}

// ReadLoop reads commands from reader until "exit"/"quit" or EOF,
// printing a prompt between commands, matching the teacher's
// commands.Handler.ReadLoop interactive shape.
func (h *Handler) ReadLoop(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)

	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			return nil
		}
		if err := h.ProcessCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		fmt.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading console input: %w", err)
	}
	return nil
}

// ProcessBatchInput reads and executes commands from reader, mirroring
// the teacher's main.processBatchInput line-by-line script runner.
func ProcessBatchInput(reader io.Reader, handler *Handler) (success, shouldExit bool) {
	scanner := bufio.NewScanner(reader)
	hadErrors := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			fmt.Println(line)
			continue
		}
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			shouldExit = true
			break
		}
		fmt.Println(">", line)
		if err := handler.ProcessCommand(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			hadErrors = true
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return false, shouldExit
	}
	return !hadErrors, shouldExit
}
