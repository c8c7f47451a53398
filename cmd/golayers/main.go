// GoLayers - Layered ad creative editor (headless).
//
// Usage:
//
//	golayers -o <file> --creative <path> [--brand <path>] [--script <path>] [options]
//	golayers -o <file> --bundle <path> [--script <path>] [options]
//	golayers watch -o <file> --creative <path> [...]
//	golayers inspect --bundle <path>
//	golayers init
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/xob0t/GoLayers/pkg/editor"
	"github.com/xob0t/GoLayers/pkg/export"
	"github.com/xob0t/GoLayers/pkg/layer"
	"github.com/xob0t/GoLayers/pkg/render"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "watch":
		err = runWatch(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		err = run(ctx, os.Args[1:])
	}
	if err != nil {
		stop()
		fatal(err)
	}
}

// options are the flags shared by render and watch mode.
type options struct {
	output     string
	creative   string
	brand      string
	bundle     string
	script     string
	configPath string
	origin     string
	logLevel   string
}

func parseOptions(name string, args []string) (*options, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	o := &options{}
	fs.StringVar(&o.output, "o", "", "Output file path (.png, .jpg or .glayers)")
	fs.StringVar(&o.output, "output", "", "Output file path (.png, .jpg or .glayers)")
	fs.StringVar(&o.creative, "creative", "", "Path to creative JSON")
	fs.StringVar(&o.brand, "brand", "", "Path to brand settings JSON (optional)")
	fs.StringVar(&o.bundle, "bundle", "", "Reopen a .glayers bundle instead of a creative")
	fs.StringVar(&o.script, "script", "", "Path to interaction script YAML (optional)")
	fs.StringVar(&o.configPath, "config", "", "Path to config YAML (optional)")
	fs.StringVar(&o.origin, "origin", "", "Editor origin, overrides config")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error, overrides config")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if o.output == "" {
		printUsage()
		return nil, fmt.Errorf("output file is required (-o)")
	}
	if (o.creative == "") == (o.bundle == "") {
		return nil, fmt.Errorf("exactly one of --creative or --bundle is required")
	}
	return o, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (o *options) loadConfig() (editor.Config, error) {
	cfg := editor.DefaultConfig()
	if o.configPath != "" {
		c, err := editor.LoadConfigFile(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = *c
	}
	if o.origin != "" {
		cfg.Origin = o.origin
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

func run(ctx context.Context, args []string) error {
	o, err := parseOptions("golayers", args)
	if err != nil {
		return err
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	fmt.Printf("Rendering: %s\n", o.output)
	if err := build(ctx, o, cfg); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", o.output)
	return nil
}

// build opens a session, replays the script and saves to o.output.
func build(ctx context.Context, o *options, cfg editor.Config) error {
	var sc *Script
	if o.script != "" {
		var err error
		if sc, err = LoadScript(o.script); err != nil {
			return fmt.Errorf("load script: %w", err)
		}
	}

	var sess *editor.Session
	save := func(ls layer.Layers, png []byte) error {
		return export.Write(o.output, sess.Document(), &export.Artifact{Layers: ls, PNG: png})
	}

	sess, err := openSession(o, cfg, editor.WithSave(save))
	if err != nil {
		return err
	}
	defer sess.Close()

	if sc != nil {
		if err := sc.Apply(sess); err != nil {
			return fmt.Errorf("script: %w", err)
		}
	}
	for _, w := range layer.Validate(sess.Document()) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	a, err := sess.Save(ctx)
	if err != nil {
		return err
	}
	if a.Fallback {
		fmt.Fprintln(os.Stderr, "Warning: cross-origin images were re-encoded for export")
	}
	return nil
}

func openSession(o *options, cfg editor.Config, opts ...editor.Option) (*editor.Session, error) {
	if o.bundle != "" {
		doc, _, err := layer.LoadBundle(o.bundle)
		if err != nil {
			return nil, fmt.Errorf("load bundle: %w", err)
		}
		return editor.Open(cfg, *doc, opts...)
	}

	c, err := layer.LoadCreative(o.creative)
	if err != nil {
		return nil, err
	}
	if _, _, ok := layer.ParseDimensions(c.Dimensions); !ok {
		fmt.Fprintf(os.Stderr, "Warning: could not parse dimensions %q, using %dx%d\n",
			c.Dimensions, layer.DefaultWidth, layer.DefaultHeight)
	}

	b := &layer.BrandSettings{}
	if o.brand != "" {
		var warnings []string
		b, warnings, err = layer.LoadBrand(o.brand)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
	}
	return editor.NewSession(cfg, *c, *b, opts...)
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var bundlePath string
	fs.StringVar(&bundlePath, "bundle", "", "Path to .glayers bundle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if bundlePath == "" {
		return errors.New("--bundle is required for inspect command")
	}

	doc, img, err := layer.LoadBundle(bundlePath)
	if err != nil {
		return err
	}

	fmt.Printf("Canvas: %dx%d, background %s, image shape %s\n",
		doc.Width, doc.Height, doc.Canvas.BackgroundColor, doc.Canvas.ImageShape)
	if len(img) > 0 {
		fmt.Printf("Image: %d bytes\n", len(img))
	}
	fmt.Print(layer.FormatLayers(*doc))
	for _, w := range layer.Validate(*doc) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return nil
}

func setupLogging(cfg editor.Config) {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
	render.SetLogger(slog.New(h))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoLayers - Layered Ad Creative Editor (Pure Go)

USAGE:
    golayers -o <file> --creative <path> [--brand <path>] [--script <path>] [options]
    golayers -o <file> --bundle <path> [--script <path>] [options]
    golayers watch -o <file> --creative <path> [...]
    golayers inspect --bundle <path>
    golayers init

RENDER MODE:
    --creative <path>      Creative JSON (dimensions, image_url, call_to_action)
    --brand <path>         Brand settings JSON (primaryColor, logoUrl) (optional)
    --bundle <path>        Reopen a saved .glayers bundle instead
    --script <path>        YAML interaction script to replay (optional)
    -o, --output <path>    Output file (.png, .jpg or .glayers)

OPTIONS:
    --config <path>        YAML config (origin, history_limit, drag_bounds, ...)
    --origin <url>         Editor origin; images elsewhere are cross-origin
    --log-level <level>    debug, info, warn or error

WATCH:
    golayers watch ...     Re-render whenever an input file changes

INSPECT:
    golayers inspect --bundle <path>    Print the layers of a bundle

EXAMPLES:
    golayers init
    golayers -o ad.png --creative creative.json --brand brand.json
    golayers -o ad.glayers --creative creative.json --brand brand.json --script script.yaml
    golayers -o ad.jpg --bundle ad.glayers
    golayers watch -o ad.png --creative creative.json --script script.yaml
    golayers inspect --bundle ad.glayers
`)
}
