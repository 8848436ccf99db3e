/*
Package console is an interactive terminal host for the xterex kernel.

Users enter TeREx expressions at a prompt; input spanning several lines is
collected until it is complete. Lines starting with a colon are commands:

	:globals   show the globals of the session
	:reset     drop all globals
	:history   show executed input
	:quit      leave

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/xterex/config"
	"github.com/npillmayer/xterex/kernel"
	"github.com/pterm/pterm"
)

// tracer traces with key 'xterex.host'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.host")
}

const continuationPrompt = "...  "

// Console is the interactive host.
type Console struct {
	kernel  *kernel.Kernel
	cfg     config.Console
	stream  io.Writer
	stderr  *color.Color
	pending []string // lines of incomplete input
}

// New creates a console host. Stream notifications of the kernel go to
// stream, usually os.Stderr.
func New(cfg config.Console, stream io.Writer) *Console {
	c := &Console{cfg: cfg, stream: stream}
	c.stderr = color.New(color.FgYellow)
	if !cfg.Color {
		c.stderr.DisableColor()
	}
	c.kernel = kernel.New(kernel.PublisherFunc(c.publish))
	return c
}

func (c *Console) publish(channel, text string) {
	if channel == kernel.StreamStderr {
		c.stderr.Fprint(c.stream, text)
		return
	}
	fmt.Fprint(c.stream, text)
}

// Kernel returns the kernel driven by the console.
func (c *Console) Kernel() *kernel.Kernel {
	return c.kernel
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Run starts the kernel, loads the init file and reads input until the user
// quits. The kernel is shut down on return.
func (c *Console) Run() error {
	initDisplay()
	if err := c.kernel.Start(); err != nil {
		return err
	}
	defer c.kernel.Shutdown(false)
	info := c.kernel.KernelInfo()
	pterm.Info.Println(info.Banner)
	repl, err := readline.NewEx(&readline.Config{
		Prompt:       c.cfg.Prompt,
		HistoryFile:  config.ExpandPath(c.cfg.HistoryFile),
		AutoComplete: completer{kernel: c.kernel},
	})
	if err != nil {
		return fmt.Errorf("cannot open terminal: %w", err)
	}
	defer repl.Close()
	if c.cfg.InitFile != "" {
		if err := c.LoadInitFile(config.ExpandPath(c.cfg.InitFile)); err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	tracer().Infof("Quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if c.Eval(line) {
			break
		}
		if len(c.pending) > 0 {
			repl.SetPrompt(continuationPrompt)
		} else {
			repl.SetPrompt(c.cfg.Prompt)
		}
	}
	pterm.Println("Good bye!")
	return nil
}

// Eval handles a line of input: a command, a line of an incomplete expression
// or the final line of an expression, which is then executed. It returns true
// if the user asked to quit.
func (c *Console) Eval(line string) bool {
	if len(c.pending) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
		quit, err := c.Command(strings.TrimSpace(line))
		if err != nil {
			pterm.Error.Println(err.Error())
		}
		return quit
	}
	code, ready := c.Submit(line)
	if !ready {
		return false
	}
	c.render(c.Execute(code))
	return false
}

// Submit collects lines until they form a complete input. It returns the
// collected code once it is complete or invalid.
func (c *Console) Submit(line string) (string, bool) {
	if len(c.pending) == 0 && strings.TrimSpace(line) == "" {
		return "", false
	}
	c.pending = append(c.pending, line)
	code := strings.Join(c.pending, "\n")
	if c.kernel.IsComplete(code).Status == "incomplete" {
		return code, false
	}
	c.pending = c.pending[:0]
	return code, true
}

// Execute executes code and returns the reply of the kernel.
func (c *Console) Execute(code string) kernel.ExecuteReply {
	var reply kernel.ExecuteReply
	req := kernel.ExecuteRequest{Code: code, StoreHistory: true}
	if err := c.kernel.Execute(req, func(r kernel.ExecuteReply) { reply = r }); err != nil {
		tracer().Errorf("execute: %v", err)
	}
	return reply
}

func (c *Console) render(reply kernel.ExecuteReply) {
	if reply.Status == kernel.StatusOK {
		if reply.PublishedResult != nil && reply.PublishedResult.Text != "" {
			pterm.Print(reply.PublishedResult.Text)
		}
		return
	}
	if len(reply.Traceback) == 0 {
		pterm.Error.Println(reply.ErrorValue)
		return
	}
	pterm.Error.Println(reply.Traceback[0])
	for _, line := range reply.Traceback[1:] {
		pterm.Println(line)
	}
}

// Command executes a console command.
func (c *Console) Command(cmd string) (bool, error) {
	switch cmd {
	case ":quit", ":q":
		return true, nil
	case ":reset":
		if err := c.kernel.Shutdown(true); err != nil {
			return false, err
		}
		pterm.Info.Println("globals dropped")
	case ":globals":
		globals, err := c.kernel.Globals()
		if err != nil {
			return false, err
		}
		pterm.Println("globals")
		root := pterm.NewTreeFromLeveledList(globalsList(globals))
		pterm.DefaultTree.WithRoot(root).Render()
	case ":history":
		for _, entry := range c.kernel.History(0, true) {
			pterm.Printf("[%d] %s\n", entry.ExecutionCount, entry.Source)
		}
	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}
	return false, nil
}

// globalsList renders globals as a leveled list: names on the first level,
// values below them.
func globalsList(globals []kernel.Global) pterm.LeveledList {
	var ll pterm.LeveledList
	for _, g := range globals {
		ll = append(ll, pterm.LeveledListItem{Level: 0, Text: g.Name})
		ll = append(ll, pterm.LeveledListItem{Level: 1, Text: g.Value})
	}
	return ll
}

// LoadInitFile executes the expressions of a file before going interactive.
// Expressions may span several lines.
func (c *Console) LoadInitFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("unable to open init file: %w", err)
	}
	defer f.Close()
	return c.load(f)
}

func (c *Console) load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		code, ready := c.Submit(scanner.Text())
		if !ready {
			continue
		}
		if reply := c.Execute(code); reply.Status != kernel.StatusOK {
			return fmt.Errorf("init file, line %d: %s", lineno, strings.Join(reply.Traceback, "\n"))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error while reading init file: %w", err)
	}
	if len(c.pending) > 0 {
		c.pending = c.pending[:0]
		return fmt.Errorf("init file ends with incomplete input")
	}
	return nil
}

// completer adapts kernel completion to readline.
type completer struct {
	kernel *kernel.Kernel
}

// Do returns the suffixes completing the token left of pos, and the length of
// that token.
func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	reply := c.kernel.Complete(string(line), pos)
	length := reply.CursorEnd - reply.CursorStart
	candidates := make([][]rune, 0, len(reply.Matches))
	for _, m := range reply.Matches {
		candidates = append(candidates, []rune(m)[length:])
	}
	return candidates, length
}
