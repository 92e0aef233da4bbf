package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/png"

	"github.com/astroimg/ripple_zero/internal/diagnostics"
	"github.com/astroimg/ripple_zero/internal/store"
	_ "golang.org/x/image/tiff"
)

// imgstore creates and inspects .image files.

const usage = `usage: imgstore <command> [flags]

commands:
  import  convert a PNG or TIFF into a single plane .image
  export  render one plane of a .image as PNG
  info    print the header of a .image
  synth   write a constant image with an injected ripple
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "import":
		runImport(args)
	case "export":
		runExport(args)
	case "info":
		runInfo(args)
	case "synth":
		runSynth(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	out := fs.String("out", "", "output image (default: input with .image extension)")
	scale := fs.Float64("scale", 1, "value of a full intensity pixel")
	units := fs.String("units", "Jy/beam", "brightness unit stored in the header")
	overwrite := fs.Bool("overwrite", false, "replace an existing output")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("import needs exactly one input file")
	}
	in := fs.Arg(0)
	if *out == "" {
		*out = strings.TrimSuffix(in, filepath.Ext(in)) + ".image"
	}

	f, err := os.Open(in)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", in, err)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", in, err)
	}

	meta, data := fromImage(img, *scale)
	meta.Units = *units
	if err := store.New().Create(*out, meta, data, *overwrite); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("Imported %s (%s, %dx%d) into %s\n", in, format, meta.Shape[0], meta.Shape[1], *out)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output PNG (default: input with .png extension)")
	plane := fs.String("plane", "", "comma separated plane indices for the non-spatial axes")
	scale := fs.Int("scale", 1, "integer enlargement factor")
	linthresh := fs.Float64("linthresh", diagnostics.DefaultSymLog.LinThresh, "linear range of the symmetric log scale")
	vmin := fs.Float64("vmin", diagnostics.DefaultSymLog.VMin, "value mapped to the bottom of the colormap")
	vmax := fs.Float64("vmax", diagnostics.DefaultSymLog.VMax, "value mapped to the top of the colormap")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("export needs exactly one input image")
	}
	in := fs.Arg(0)
	if *out == "" {
		*out = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
	}
	sel, err := parseIndices(*plane)
	if err != nil {
		log.Fatalf("Invalid -plane %q: %v", *plane, err)
	}

	h, err := store.New().Open(context.Background(), in)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", in, err)
	}
	p, err := h.ReadPlane(sel)
	h.Close()
	if err != nil {
		log.Fatalf("Failed to read plane: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	norm := diagnostics.SymLog{LinThresh: *linthresh, VMin: *vmin, VMax: *vmax}.Norm()
	if err := diagnostics.RenderPNG(f, p, norm, *scale); err != nil {
		f.Close()
		log.Fatalf("Failed to render %s: %v", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		log.Fatal("info needs at least one image")
	}
	s := store.New()
	for _, id := range fs.Args() {
		h, err := s.Open(context.Background(), id)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", id, err)
		}
		meta := h.Metadata()
		h.Close()
		fmt.Printf("%s:\n", id)
		printJSON(meta)
	}
}

func runSynth(args []string) {
	fs := flag.NewFlagSet("synth", flag.ExitOnError)
	out := fs.String("out", "synth.image", "output image")
	width := fs.Int("w", 256, "plane width")
	height := fs.Int("h", 256, "plane height")
	planes := fs.Int("planes", 1, "number of planes along a third axis (1 for a 2-D image)")
	value := fs.Float64("value", 0, "constant background")
	amp := fs.Float64("amp", 0.01, "ripple amplitude")
	kx := fs.Float64("kx", 8, "ripple cycles across the width")
	ky := fs.Float64("ky", 0, "ripple cycles across the height")
	overwrite := fs.Bool("overwrite", false, "replace an existing output")
	fs.Parse(args)

	meta, data, err := synth(synthParams{
		Width: *width, Height: *height, Planes: *planes,
		Value: *value, Amp: *amp, KX: *kx, KY: *ky,
	})
	if err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}
	if err := store.New().Create(*out, meta, data, *overwrite); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("Wrote %v image to %s\n", meta.Shape, *out)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}
	fmt.Println(string(data))
}
