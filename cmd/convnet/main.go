// Package main provides the convnet CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/classifiers"
	"github.com/born-ml/convnet/internal/gradcheck"
	"github.com/born-ml/convnet/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "convnet: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "convnet %s\n", version)
		return nil
	case "sanity":
		return sanity(args[1:], out)
	case "check":
		return check(args[1:], out)
	default:
		usage(out)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "convnet - three-layer convolutional network")
	fmt.Fprintf(out, "Version: %s\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  sanity     Initial loss of the default network, with and without regularization")
	fmt.Fprintln(out, "  check      Numerical gradient check of a small network")
}

// sanity prints the loss of a freshly initialized network on a random batch.
// Without regularization it should be close to ln(NumClasses).
func sanity(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sanity", flag.ContinueOnError)
	fs.SetOutput(out)
	reg := fs.Float64("reg", 0.5, "regularization strength of the second evaluation")
	seed := fs.Int64("seed", 0, "random seed")
	n := fs.Int("n", 50, "batch size")
	output := fs.String("o", "", "write the initialized parameters to this SafeTensors file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 {
		return errors.Errorf("batch size must be positive, got %d", *n)
	}

	cfg := classifiers.DefaultConfig()
	cfg.Seed = *seed
	net, err := classifiers.New(cfg)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	x, err := tensor.Randn(tensor.Shape{*n, cfg.InputDim[0], cfg.InputDim[1], cfg.InputDim[2]}, cfg.DType, 1, rng)
	if err != nil {
		return err
	}
	y := make([]int, *n)
	for i := range y {
		y[i] = rng.Intn(cfg.NumClasses)
	}

	net.Reg = 0
	plain := net.Loss(x, y).Loss
	net.Reg = *reg
	regularized := net.Loss(x, y).Loss

	fmt.Fprintf(out, "Initial loss (no regularization): %.6f (ln %d = %.6f)\n",
		plain, cfg.NumClasses, math.Log(float64(cfg.NumClasses)))
	fmt.Fprintf(out, "Initial loss (reg %g): %.6f\n", *reg, regularized)

	if *output != "" {
		if err := net.SaveFile(*output); err != nil {
			return err
		}
		fmt.Fprintf(out, "Parameters written to %s\n", *output)
	}
	return nil
}

// check compares the analytic gradients of a small float64 network against
// centered finite differences and prints the relative error per parameter.
func check(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(out)
	seed := fs.Int64("seed", 0, "random seed")
	reg := fs.Float64("reg", 0, "regularization strength")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := classifiers.Config{
		InputDim:    [3]int{3, 16, 16},
		NumFilters:  3,
		FilterSize:  3,
		HiddenDim:   7,
		NumClasses:  10,
		WeightScale: 1e-2,
		Reg:         *reg,
		DType:       tensor.Float64,
		Seed:        *seed,
	}
	net, err := classifiers.New(cfg)
	if err != nil {
		return err
	}

	const batch = 2
	rng := rand.New(rand.NewSource(*seed))
	x, err := tensor.Randn(tensor.Shape{batch, 3, 16, 16}, tensor.Float64, 1, rng)
	if err != nil {
		return err
	}
	y := make([]int, batch)
	for i := range y {
		y[i] = rng.Intn(cfg.NumClasses)
	}

	res := net.Loss(x, y)
	fmt.Fprintf(out, "Loss: %.6f\n", res.Loss)
	for _, k := range net.Params.Keys() {
		numeric := gradcheck.Numerical(func() float64 {
			return net.Loss(x, y).Loss
		}, net.Params[k], gradcheck.DefaultStep)
		analytic := res.Grads[k].Float64s()
		fmt.Fprintf(out, "%s max relative error: %e (max abs error %e)\n",
			k, gradcheck.RelError(analytic, numeric), gradcheck.MaxAbsError(analytic, numeric))
	}
	return nil
}
