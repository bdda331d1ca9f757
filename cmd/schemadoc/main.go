package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/schemadoc"
	"github.com/reoring/schemadoc/collection"
	"github.com/reoring/schemadoc/i18n"
	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `schemadoc CLI

Usage:
  schemadoc instantiate -schema s.json [-required]
  schemadoc validate    -schema s.json -instance doc.json
  schemadoc set         -schema s.json -instance doc.json -path a.b.0 -value '<json>' [-o out.json]
  schemadoc list        -schema s.json -file presets.json [-key name] [-filter 'size > 1']

Common flags:
  -v           debug logging
  -log-file    also write JSON logs to this file
  -lang        message language (en, ja)

Schemas and instances ending in .yaml or .yml are read as YAML, others as JSON.`)
}

// run returns the process exit code: 0 success, 1 invalid data, 2 usage or
// I/O errors.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var cmd func(*env, []string) int
	switch args[0] {
	case "instantiate":
		cmd = instantiateCmd
	case "validate":
		cmd = validateCmd
	case "set":
		cmd = setCmd
	case "list":
		cmd = listCmd
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
	return cmd(&env{name: args[0], stdout: stdout, stderr: stderr}, args[1:])
}

// env carries the streams and the flags every subcommand shares.
type env struct {
	name    string
	stdout  io.Writer
	stderr  io.Writer
	log     *slog.Logger
	verbose bool
	logFile string
	lang    string
	schema  string
}

func (e *env) flags() *flag.FlagSet {
	fs := flag.NewFlagSet(e.name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.BoolVar(&e.verbose, "v", false, "enable debug logs")
	fs.StringVar(&e.logFile, "log-file", "", "also write JSON logs to this file")
	fs.StringVar(&e.lang, "lang", "en", "message language (en, ja)")
	fs.StringVar(&e.schema, "schema", "", "schema file")
	return fs
}

// setup finishes flag handling; the returned func must be deferred.
func (e *env) setup(fs *flag.FlagSet, args []string) (func(), bool) {
	if err := fs.Parse(args); err != nil {
		return nil, false
	}
	if e.schema == "" {
		fmt.Fprintln(e.stderr, "-schema is required")
		fs.Usage()
		return nil, false
	}
	if e.verbose {
		level.Set(slog.LevelDebug)
	}
	i18n.SetLanguage(e.lang)
	log, closer, err := newLogger(e.stderr, e.logFile)
	if err != nil {
		fmt.Fprintf(e.stderr, "open log file: %v\n", err)
		return nil, false
	}
	e.log = log
	return closer, true
}

func (e *env) loadSchema() (*jsonschema.Schema, bool) {
	doc, err := readValue(e.schema)
	if err != nil {
		e.log.Error("read schema", "path", e.schema, "error", err)
		return nil, false
	}
	s, err := jsonschema.Parse(doc)
	if err != nil {
		e.log.Error("parse schema", "path", e.schema, "error", err)
		return nil, false
	}
	e.log.Debug("schema loaded", "path", e.schema)
	return s, true
}

func (e *env) print(v value.Value) int {
	b, err := value.MarshalIndent(v, "", "  ")
	if err != nil {
		e.log.Error("encode", "error", err)
		return 2
	}
	fmt.Fprintln(e.stdout, string(b))
	return 0
}

func (e *env) printIssues(iss schemadoc.Issues) {
	for _, it := range iss {
		path := it.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(e.stdout, "%s\t%s\t%s\n", path, it.Code, it.Message)
	}
}

func instantiateCmd(e *env, args []string) int {
	fs := e.flags()
	var required bool
	fs.BoolVar(&required, "required", false, "only fill in required properties")
	done, ok := e.setup(fs, args)
	if !ok {
		return 2
	}
	defer done()
	s, ok := e.loadSchema()
	if !ok {
		return 2
	}
	v := schemadoc.Instantiate(s, required)
	if v == nil {
		e.log.Warn("schema has no default instance")
		v = value.Null{}
	}
	return e.print(v)
}

func validateCmd(e *env, args []string) int {
	fs := e.flags()
	var instance string
	fs.StringVar(&instance, "instance", "", "instance file")
	done, ok := e.setup(fs, args)
	if !ok {
		return 2
	}
	defer done()
	s, ok := e.loadSchema()
	if !ok {
		return 2
	}
	if instance == "" {
		fmt.Fprintln(e.stderr, "-instance is required")
		return 2
	}
	v, err := readValue(instance)
	if err != nil {
		e.log.Error("read instance", "path", instance, "error", err)
		return 2
	}
	iss := schemadoc.Validate(v, s)
	if len(iss) > 0 {
		e.printIssues(iss)
		e.log.Info("instance invalid", "path", instance, "issues", len(iss))
		return 1
	}
	e.log.Info("instance valid", "path", instance)
	return 0
}

func setCmd(e *env, args []string) int {
	fs := e.flags()
	var instance, path, raw, out, delim string
	fs.StringVar(&instance, "instance", "", "instance file (default: schema default)")
	fs.StringVar(&path, "path", "", "path to assign")
	fs.StringVar(&raw, "value", "", "JSON value to assign")
	fs.StringVar(&out, "o", "", "write the result here instead of stdout")
	fs.StringVar(&delim, "delim", ".", "path delimiter")
	done, ok := e.setup(fs, args)
	if !ok {
		return 2
	}
	defer done()
	s, ok := e.loadSchema()
	if !ok {
		return 2
	}
	if path == "" || raw == "" {
		fmt.Fprintln(e.stderr, "-path and -value are required")
		return 2
	}
	v, err := value.ParseJSON([]byte(raw))
	if err != nil {
		e.log.Error("parse -value", "error", err)
		return 2
	}

	var seed value.Value
	if instance != "" {
		if seed, err = readValue(instance); err != nil {
			e.log.Error("read instance", "path", instance, "error", err)
			return 2
		}
		if !value.IsContainer(seed) {
			e.log.Error("instance must be an object or array", "path", instance)
			return 2
		}
	}
	doc, err := schemadoc.New(s, seed, schemadoc.Options{Delimiter: delim, Logger: e.log})
	if err != nil {
		if iss, ok := schemadoc.AsIssues(err); ok {
			e.printIssues(iss)
		}
		e.log.Error("load document", "error", err)
		return 1
	}
	if err := doc.Set(path, v); err != nil {
		e.printIssues(doc.Errors())
		return 1
	}
	if out == "" {
		return e.print(doc.Get(""))
	}
	b, err := value.MarshalIndent(doc.Get(""), "", "  ")
	if err != nil {
		e.log.Error("encode", "error", err)
		return 2
	}
	if err := os.WriteFile(out, append(b, '\n'), 0o644); err != nil {
		e.log.Error("write output", "path", out, "error", err)
		return 2
	}
	e.log.Info("document written", "path", out)
	return 0
}

func listCmd(e *env, args []string) int {
	fs := e.flags()
	var file, key, filter string
	fs.StringVar(&file, "file", "", "collection file (JSON or YAML array)")
	fs.StringVar(&key, "key", "", "print only this property of each entry")
	fs.StringVar(&filter, "filter", "", "expr-lang predicate over entry properties")
	done, ok := e.setup(fs, args)
	if !ok {
		return 2
	}
	defer done()
	s, ok := e.loadSchema()
	if !ok {
		return 2
	}
	if file == "" {
		fmt.Fprintln(e.stderr, "-file is required")
		return 2
	}
	c, err := collection.New(s, []value.Value{}, collection.WithLogger(e.log))
	if err != nil {
		e.log.Error("create collection", "error", err)
		return 1
	}
	if err := c.LoadFile(file); err != nil {
		e.log.Error("load collection", "error", err)
		return 1
	}

	entries := c.Get()
	if filter != "" {
		if entries, err = c.Filter(filter); err != nil {
			e.log.Error("filter", "error", err)
			return 2
		}
	}
	if key == "" {
		return e.print(value.Array(entries))
	}
	for _, entry := range entries {
		obj, _ := entry.(value.Object)
		b, err := value.Marshal(obj[key])
		if err != nil {
			e.log.Error("encode", "error", err)
			return 2
		}
		fmt.Fprintln(e.stdout, string(b))
	}
	return 0
}

func readValue(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return value.ParseYAML(data)
	default:
		return value.ParseJSON(data)
	}
}
