package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.starlark.net/starlark"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostobj/starlarkhost"
	"github.com/wippyai/hostobj/transcoder"
)

type options struct {
	expr    string
	file    string
	varName string
	in      string
	out     string
	strict  bool
}

func main() {
	var (
		expr        = flag.String("expr", "", "Starlark expression to evaluate")
		file        = flag.String("file", "", "Starlark script to execute")
		varName     = flag.String("var", "", "Global of -file to print")
		in          = flag.String("in", "", "JSON or YAML document to encode")
		out         = flag.String("out", "repr", "Output format: json, yaml or repr")
		strict      = flag.Bool("strict", false, "Reject unknown fields when decoding")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		transcoder.SetLogger(logger)
		starlarkhost.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := options{expr: *expr, file: *file, varName: *varName, in: *in, out: *out, strict: *strict}
	if opts.expr == "" && opts.file == "" && opts.in == "" {
		fmt.Fprintln(os.Stderr, "Usage: hostobj -expr '<starlark expr>' [-out json|yaml|repr]")
		fmt.Fprintln(os.Stderr, "       hostobj -file script.star -var name [-out json|yaml|repr]")
		fmt.Fprintln(os.Stderr, "       hostobj -in doc.json|doc.yaml [-out json|yaml|repr]")
		fmt.Fprintln(os.Stderr, "       hostobj -i  (interactive mode)")
		os.Exit(1)
	}

	result, err := run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result)
}

func run(opts options) (string, error) {
	h := starlarkhost.New(&starlark.Thread{Name: "hostobj"})
	c := transcoder.NewCompiler()
	dopts := transcoder.DefaultOptions()
	dopts.DisallowUnknownFields = opts.strict
	dec := transcoder.NewDecoderWithOptions(c, dopts)

	var obj starlark.Value
	switch {
	case opts.in != "":
		doc, err := loadDocument(opts.in)
		if err != nil {
			return "", err
		}
		encoded, err := transcoder.NewEncoderWithOptions(c, dopts).Encode(h, doc)
		if err != nil {
			return "", fmt.Errorf("encode: %w", err)
		}
		obj = encoded.(starlark.Value)

	case opts.file != "":
		if opts.varName == "" {
			return "", fmt.Errorf("-file requires -var")
		}
		globals, err := h.ExecFile(opts.file, nil)
		if err != nil {
			return "", fmt.Errorf("exec: %w", err)
		}
		v, ok := globals[opts.varName]
		if !ok {
			return "", fmt.Errorf("global %q not defined by %s", opts.varName, opts.file)
		}
		obj = v

	default:
		v, err := h.Eval(opts.expr)
		if err != nil {
			return "", fmt.Errorf("eval: %w", err)
		}
		obj = v
	}

	return render(h, dec, obj, opts.out)
}

// render prints obj in format. json and yaml go through the decoder, so they
// show the Go value the object transcodes to.
func render(h *starlarkhost.Host, dec *transcoder.Decoder, obj starlark.Value, format string) (string, error) {
	if format == "repr" {
		return h.Repr(obj), nil
	}

	var v any
	if err := dec.Decode(h, obj, &v); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal json: %w", err)
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

// loadDocument reads a JSON or YAML file, chosen by extension, into
// plain Go values the encoder accepts.
func loadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		if err := d.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
	return normalize(doc), nil
}

// normalize turns JSON numbers into int64, uint64 above MaxInt64, or
// float64, and gives every mapping text keys.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}
