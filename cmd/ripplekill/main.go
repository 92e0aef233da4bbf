package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/astroimg/ripple_zero"
)

// ripplekill removes periodic ripple from one plane of an image by zeroing the
// strongest conjugate pairs of its Fourier spectrum.

func main() {
	npeaks := flag.Int("npeaks", ripple.DefaultPeaks, "number of peak pairs to remove")
	outfile := flag.String("outfile", "", "output image (default: <input>_ripple_killed.image)")
	overwrite := flag.Bool("overwrite", false, "replace the output image if it exists")
	verbose := flag.Bool("verbose", false, "print progress to stderr")
	excludeCenter := flag.Bool("exclude-center", false, "never remove the zero-frequency cell")
	plane := flag.String("plane", "", "comma separated plane indices for the non-spatial axes, e.g. 0,3")
	diagDir := flag.String("diagnostics", "", "directory for before/after plots and an HTML report")
	journalPath := flag.String("journal", "", "SQLite database recording every run")
	httpCache := flag.String("http-cache", "", "cache directory for http(s) inputs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] IMAGE\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	opts := []ripple.Option{
		ripple.WithPeaks(*npeaks),
		ripple.WithExcludeCenter(*excludeCenter),
		ripple.WithOverwrite(*overwrite),
	}
	if *verbose {
		opts = append(opts, ripple.WithLogger(log.New(os.Stderr, "ripplekill: ", 0)))
	}
	if *plane != "" {
		sel, err := parsePlane(*plane)
		if err != nil {
			log.Fatalf("Invalid -plane %q: %v", *plane, err)
		}
		opts = append(opts, ripple.WithPlane(sel...))
	}
	if *diagDir != "" {
		opts = append(opts, ripple.WithDiagnostics(*diagDir))
	}
	if *journalPath != "" {
		opts = append(opts, ripple.WithJournal(*journalPath))
	}
	if *httpCache != "" {
		opts = append(opts, ripple.WithHTTPCache(*httpCache))
	}

	k, err := ripple.New(opts...)
	if err != nil {
		log.Fatalf("Failed to create ripple killer: %v", err)
	}

	report, err := k.Run(context.Background(), input, *outfile)
	if cerr := k.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("Failed to clean %s: %v", input, err)
	}

	fmt.Printf("%s -> %s\n", report.Input, report.Output)
	for i, p := range report.Peaks {
		fmt.Printf("  peak %d: (%d, %d) offset (%d, %d) |F| = %.6g\n", i+1, p.X, p.Y, p.DX, p.DY, p.Magnitude)
	}
}

func parsePlane(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sel := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		sel[i] = v
	}
	return sel, nil
}
