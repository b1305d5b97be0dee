package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/expkit/internal/config"
	"github.com/born-ml/expkit/internal/jsonl"
	"github.com/born-ml/expkit/internal/logger"
	"github.com/born-ml/expkit/internal/random"
	"github.com/born-ml/expkit/internal/resource"
	"github.com/born-ml/expkit/internal/tensor"
	"github.com/born-ml/expkit/internal/tokenizer"
)

// runPrepare makes the named tokenizer data available: "punkt" or a tiktoken
// encoding name. Without arguments it prepares punkt.
func runPrepare(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) == 0 {
		args = []string{"punkt"}
	}

	cache := resource.New(cfg.Resource())
	tokenizer.UseCache(cache)

	for _, name := range args {
		if name == "punkt" {
			path, err := tokenizer.PunktPath(ctx, cache)
			if err != nil {
				return err
			}
			logger.Log.Info("tokenizer data ready", "resource", name, "path", path)
			continue
		}

		if _, err := tokenizer.EncodingURL(name); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
		tok, err := tokenizer.NewTikToken(name)
		if err != nil {
			return err
		}
		logger.Log.Info("tokenizer data ready", "resource", name, "vocab_size", tok.VocabSize())
	}
	return nil
}

// runValidate streams every file and reports its record count or its first
// invalid line. It fails if any file is invalid.
func runValidate(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: validate needs at least one file", errUsage)
	}

	invalid := 0
	for _, path := range args {
		n, err := validateFile(path)
		if err != nil {
			invalid++
			fmt.Fprintf(stdout, "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(stdout, "%s: %d records\n", path, n)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d files invalid", invalid, len(args))
	}
	return nil
}

func validateFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := jsonl.NewDecoder(f)
	n := 0
	for {
		var v any
		err := dec.Next(&v)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// sample is one line of seed output.
type sample struct {
	Generator string `json:"generator"`
	Values    any    `json:"values"`
}

// runSeed seeds every generator and prints n draws from each, one JSON line
// per generator. The same seed always prints the same lines.
func runSeed(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", 5, "draws per generator")
	seed := fs.Int64("seed", cfg.Seed, "seed (defaults to the configured seed)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *n <= 0 {
		return fmt.Errorf("%w: -n must be positive, got %d", errUsage, *n)
	}

	random.Seed(*seed)
	logger.Log.Info("generators seeded", "seed", *seed)

	samples := []sample{
		{Generator: "array.normal", Values: random.Array().Normal(*n, 0, 1)},
		{Generator: "general.int", Values: generalInts(*n)},
	}
	devices := append([]tensor.Device{tensor.CPU}, tensor.Accelerators()...)
	for _, d := range devices {
		x, err := tensor.Rand(tensor.Shape{*n}, tensor.Float64, d)
		if err != nil {
			return err
		}
		samples = append(samples, sample{Generator: "tensor." + d.String(), Values: x.AsFloat64()})
	}

	enc := jsonl.NewEncoder(stdout)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return enc.Flush()
}

func generalInts(n int) []int64 {
	r := random.General()
	out := make([]int64, n)
	for i := range out {
		out[i] = r.Int64N(1 << 20)
	}
	return out
}
