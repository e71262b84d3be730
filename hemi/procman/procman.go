// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Procman package implements the actions of the program: parse, check, serve, and so on.

package procman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"gopkg.in/yaml.v3"

	"github.com/hexinfra/mpform/hemi"
	"github.com/hexinfra/mpform/hemi/hemiweb"
	"github.com/hexinfra/mpform/hemi/library/arena"
)

const usage = `
%s (%s)
================================================================================

  %s [ACTION] [OPTIONS]

ACTION
------

  help         # show this message
  version      # show version info
  parse        # parse a multipart/form-data content and print it
  check        # check the config file
  serve        # start the web interface

  Only one action is allowed at a time.
  If ACTION is missing, the default action is "help".

OPTIONS
-------

  --debug  <level>    # debug level (default: %d, means disable. max: 2)
  --config <file>     # path to config file (default: built-in config)
  --listen <addr>     # listen address of web interface (default: %s)
  --type   <value>    # Content-Type field value, like "multipart/form-data; boundary=XYZ"
  --body   <file>     # file of the content to parse. "-" means stdin (default: -)
  --format <format>   # output format: text, yaml, json (default: text)
  --crlf              # turn bare LF in the content into CRLF before parsing

  "--debug" and "--config" apply for all actions.
  "--listen" applies for "serve" only.
  "--type", "--body", "--format" and "--crlf" apply for "parse" only.

`

// Opts
type Opts struct {
	ProgramName  string
	ProgramTitle string
	DebugLevel   int
	WebUIAddr    string
}

const ( // exit codes
	codeOK   = 0
	codeFail = 1 // parsing failed
)

// flags
type flags struct {
	debugLevel int
	configFile string
	listen     string
	typeValue  string
	bodyFile   string
	format     string
	crlf       bool
	set        map[string]bool // flags given on command line
}

// exitError carries the exit code of a failed action.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func useError(err error) error  { return &exitError{hemi.CodeUse, err} }
func envError(err error) error  { return &exitError{hemi.CodeEnv, err} }
func failError(err error) error { return &exitError{codeFail, err} }

func exitCode(err error) int {
	if err == nil {
		return codeOK
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return hemi.CodeBug
}

// Main runs the action given by command line and exits.
func Main(opts *Opts) {
	err := runAction(opts, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch exitCode(err) {
	case codeOK:
		os.Exit(codeOK)
	case codeFail:
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(codeFail)
	case hemi.CodeUse:
		hemi.UseExitln(err.Error())
	case hemi.CodeEnv:
		hemi.EnvExitln(err.Error())
	default:
		hemi.BugExitln(err.Error())
	}
}

// Run runs an action and returns the exit code. Failures are printed to stderr the way Main prints them.
func Run(opts *Opts, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	err := runAction(opts, args, stdin, stdout, stderr)
	code := exitCode(err)
	if err != nil {
		fmt.Fprintf(stderr, "%s%s\n", hemi.ExitPrefix(code), err.Error())
	}
	return code
}

func runAction(opts *Opts, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	action := "help"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		action, args = args[0], args[1:]
	}

	var f flags
	flagSet := gnuflag.NewFlagSet(opts.ProgramName, gnuflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() { printUsage(opts, stderr) }
	flagSet.IntVar(&f.debugLevel, "debug", opts.DebugLevel, "")
	flagSet.StringVar(&f.configFile, "config", "", "")
	flagSet.StringVar(&f.listen, "listen", opts.WebUIAddr, "")
	flagSet.StringVar(&f.typeValue, "type", "", "")
	flagSet.StringVar(&f.bodyFile, "body", "-", "")
	flagSet.StringVar(&f.format, "format", "text", "")
	flagSet.BoolVar(&f.crlf, "crlf", false, "")
	if err := flagSet.Parse(true, args); err != nil {
		return useError(err)
	}
	if flagSet.NArg() > 0 {
		return useError(errors.Errorf("unexpected arguments: %v", flagSet.Args()))
	}
	f.set = make(map[string]bool)
	flagSet.Visit(func(flag *gnuflag.Flag) { f.set[flag.Name] = true })

	switch action {
	case "help":
		printUsage(opts, stdout)
		return nil
	case "version":
		fmt.Fprintln(stdout, hemi.Version)
		return nil
	}

	config, err := loadConfig(&f)
	if err != nil {
		return envError(err)
	}
	if err := config.Apply(); err != nil {
		return useError(err)
	}

	switch action {
	case "check":
		fmt.Fprintln(stdout, "PASS")
		if hemi.DebugLevel() >= 1 {
			fmt.Fprint(stdout, config.Text())
		}
		return nil
	case "parse":
		return parse(&f, config, stdin, stdout)
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := hemiweb.NewServer(config).ListenAndServe(ctx); err != nil {
			return envError(err)
		}
		return nil
	default:
		printUsage(opts, stderr)
		return useError(errors.Errorf("unknown action: %s", action))
	}
}

func printUsage(opts *Opts, w io.Writer) {
	fmt.Fprintf(w, usage, opts.ProgramTitle, hemi.Version, opts.ProgramName, opts.DebugLevel, opts.WebUIAddr)
}

// loadConfig loads the config file if any, then applies command line flags over it.
func loadConfig(f *flags) (*hemi.Config, error) {
	config := hemi.DefaultConfig()
	if f.configFile != "" {
		c, err := hemi.ConfigFromFile(f.configFile)
		if err != nil {
			return nil, errors.Trace(err)
		}
		config = c
	} else {
		config.Listen = f.listen
	}
	if f.set["listen"] {
		config.Listen = f.listen
	}
	if f.set["debug"] || f.configFile == "" {
		config.Debug = int32(f.debugLevel)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return config, nil
}

func parse(f *flags, config *hemi.Config, stdin io.Reader, stdout io.Writer) error {
	if f.typeValue == "" {
		return useError(errors.New("--type is required for parse"))
	}
	if f.format != "text" && f.format != "yaml" && f.format != "json" {
		return useError(errors.Errorf("unknown format: %s", f.format))
	}
	content, err := readBody(f.bodyFile, stdin)
	if err != nil {
		return envError(err)
	}
	if f.crlf {
		content = toCRLF(content)
	}

	a, err := arena.New(int(config.ArenaChunk))
	if err != nil {
		return envError(err)
	}
	defer a.Free()

	data, err := hemi.Parse(a, f.typeValue, content)
	if err != nil {
		return failError(errors.Annotate(err, hemi.ResultOf(err)))
	}
	if err := printFormData(stdout, f.format, data, a); err != nil {
		return envError(err)
	}
	return nil
}

func readBody(bodyFile string, stdin io.Reader) ([]byte, error) {
	if bodyFile == "-" {
		content, err := io.ReadAll(stdin)
		return content, errors.Annotate(err, "cannot read stdin")
	}
	content, err := os.ReadFile(bodyFile)
	return content, errors.Annotatef(err, "cannot read body %q", bodyFile)
}

func toCRLF(content []byte) []byte {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
}

func printFormData(w io.Writer, format string, data *hemi.FormData, a *arena.Arena) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data.View()); err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(encoder.Close())
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return errors.Trace(encoder.Encode(data.View()))
	}
	fmt.Fprintf(w, "mime-type: %s\n", data.MimeType)
	for _, entry := range data.Attributes.Entries() {
		fmt.Fprintf(w, "attribute: %s=%s\n", entry.Key, entry.Value)
	}
	for i, part := range data.Parts {
		fmt.Fprintf(w, "part %d:\n", i)
		for _, entry := range part.Headers.Entries() {
			fmt.Fprintf(w, "  %s: %s\n", entry.Key, entry.Value)
		}
		if part.HasContent() {
			fmt.Fprintf(w, "  content: %s\n", part.Content)
		}
	}
	fmt.Fprintf(w, "arena: %s\n", a.Stats())
	return nil
}
