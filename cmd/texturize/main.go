// Command texturize synthesizes a seamless texture of arbitrary size from
// an exemplar image.
//
// Usage:
//
//	texturize -exemplar stones.png -width 1024 -height 1024 -output out.png
//
// An optional control map (-control) holds normalized exemplar coordinates
// in its red and green channels and steers where exemplar content goes.
// With -features the appearance-space sample is written as well, in the
// lossless TSF format.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/codec"
	"github.com/crud89/texturize/feature"
	"github.com/crud89/texturize/search"
	"github.com/crud89/texturize/synth"
)

type options struct {
	exemplar     string
	control      string
	output       string
	features     string
	width        int
	height       int
	depth        int
	iterations   int
	neighborhood int
	components   int
	seed         uint64
	edgeModel    string
	lab          bool
	blend        bool
	timeout      time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.exemplar, "exemplar", "", "exemplar image (required)")
	flag.StringVar(&opts.control, "control", "", "optional control map with (u, v) in its first two channels")
	flag.StringVar(&opts.output, "output", "out.png", "output file; the extension selects the format")
	flag.StringVar(&opts.features, "features", "", "optional file receiving the feature sample (.tsf)")
	flag.IntVar(&opts.width, "width", 512, "output width")
	flag.IntVar(&opts.height, "height", 512, "output height")
	flag.IntVar(&opts.depth, "depth", 0, "output bit depth, 0 for the format default")
	flag.IntVar(&opts.iterations, "iterations", 6, "maximum number of refinement passes")
	flag.IntVar(&opts.neighborhood, "neighborhood", 5, "neighborhood size (odd)")
	flag.IntVar(&opts.components, "components", 0, "principal components kept per descriptor, 0 for all")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed")
	flag.StringVar(&opts.edgeModel, "edge-model", "sobel", "edge model name, empty to disable")
	flag.BoolVar(&opts.lab, "lab", false, "match colors in CIE L*a*b* instead of RGB")
	flag.BoolVar(&opts.blend, "blend", false, "blend neighbor predictions in the output")
	flag.DurationVar(&opts.timeout, "timeout", 0, "stop refining after this long and keep the best result")
	verbose := flag.Bool("v", false, "log progress to stderr")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("texturize: ")

	if *verbose {
		texturize.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if opts.exemplar == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	start := time.Now()
	exemplar, err := codec.Load(opts.exemplar)
	if err != nil {
		return err
	}

	appearanceCfg := feature.DefaultAppearanceConfig()
	appearanceCfg.EdgeModel = opts.edgeModel
	if opts.lab {
		appearanceCfg.ColorSpace = feature.ColorLab
	}
	appearance, err := feature.NewAppearance(appearanceCfg)
	if err != nil {
		return err
	}
	features, err := appearance.Build(exemplar)
	if err != nil {
		return err
	}
	if opts.features != "" {
		if err := codec.Save(opts.features, features, 0); err != nil {
			return err
		}
	}

	searchCfg := search.DefaultConfig()
	searchCfg.NeighborhoodSize = opts.neighborhood
	searchCfg.Components = opts.components
	index, err := search.Build(features, searchCfg)
	if err != nil {
		return err
	}

	synthCfg := synth.DefaultConfig()
	synthCfg.Iterations = opts.iterations
	synthCfg.Seed = opts.seed
	synthCfg.Blend = opts.blend
	synthesizer, err := synth.New(index, synthCfg)
	if err != nil {
		return err
	}

	req := synth.Request{Width: opts.width, Height: opts.height, Exemplar: exemplar}
	if opts.control != "" {
		control, err := loadControl(opts.control)
		if err != nil {
			return err
		}
		req.Control = control
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	res, err := synthesizer.Run(ctx, req)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.Printf("stopped early (%v), saving the best result", err)
	case err != nil:
		return err
	}

	if err := codec.Save(opts.output, res.Output, opts.depth); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Printf("%s: %d×%d texels (%d texels) in %d passes, cost %.4f, %v\n",
		opts.output, opts.width, opts.height, opts.width*opts.height,
		res.Passes, res.Cost(), time.Since(start).Round(time.Millisecond))
	return nil
}

// loadControl loads a control map and keeps its first two channels.
func loadControl(path string) (*texturize.Sample, error) {
	control, err := codec.Load(path)
	if err != nil {
		return nil, err
	}
	if control.Channels() < 2 {
		return nil, texturize.WrapOp("loadControl", texturize.ErrChannelCount)
	}
	uv := texturize.MustSample(1, 1, 1)
	if err := control.Extract(0, 2, uv); err != nil {
		return nil, err
	}
	return uv, nil
}
