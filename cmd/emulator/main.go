package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"beeb-core/internal/bigpage"
	"beeb-core/internal/discimage"
	"beeb-core/internal/machine"
	"beeb-core/internal/video"
)

func main() {
	osROMPath := flag.String("os", "", "Path to the OS ROM image (16 KiB)")
	sidewaysPath := flag.String("rom", "", "Path to a sideways ROM image loaded into bank 15 (16 KiB)")
	disc0Path := flag.String("disc0", "", "Path to a disc image for drive 0")
	disc1Path := flag.String("disc1", "", "Path to a disc image for drive 1")
	variantFlag := flag.String("variant", "master", "Machine variant: b, bplus, or master")
	cycles := flag.Uint64("cycles", machine.CyclesPerSecond*5, "Number of bus cycles to run before exiting")
	screenshot := flag.String("screenshot", "", "Write a PNG of the final frame to this path")
	enableLog := flag.Bool("log", false, "Print diagnostic entries to stderr as they occur")
	enableDebugger := flag.Bool("debug", false, "Enable debugger instrumentation (breakpoints, byte flags)")
	flag.Parse()

	if *osROMPath == "" {
		fmt.Println("beeb-core emulator")
		fmt.Println("  -os <path>          Path to the OS ROM image (required)")
		fmt.Println("  -rom <path>         Sideways ROM image loaded into bank 15")
		fmt.Println("  -disc0 <path>       Disc image for drive 0")
		fmt.Println("  -disc1 <path>       Disc image for drive 1")
		fmt.Println("  -variant <name>     b, bplus, or master (default master)")
		fmt.Println("  -cycles <n>         Bus cycles to run before exiting")
		fmt.Println("  -screenshot <path>  Write the final frame as a PNG")
		fmt.Println("  -log                Print diagnostic entries to stderr")
		fmt.Println("  -debug              Enable debugger instrumentation")
		os.Exit(1)
	}

	osROM, err := os.ReadFile(*osROMPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading OS ROM: %v\n", err)
		os.Exit(1)
	}

	variant, err := parseVariant(*variantFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := machine.Config{
		Variant:        variant,
		OSROM:          osROM,
		EnableDebugger: *enableDebugger,
		DiagCapacity:   4096,
	}

	if *sidewaysPath != "" {
		rom, err := os.ReadFile(*sidewaysPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading sideways ROM: %v\n", err)
			os.Exit(1)
		}
		cfg.Sideways[bigpage.SidewaysBanks-1] = rom
	}

	m, err := machine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error constructing machine: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := attachDisc(m, 0, *disc0Path); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading disc 0: %v\n", err)
		os.Exit(1)
	}
	if err := attachDisc(m, 1, *disc1Path); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading disc 1: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("beeb-core: variant=%s cycles=%d\n", *variantFlag, *cycles)

	for c := uint64(0); c < *cycles; c++ {
		m.Step()
	}

	if *enableLog && m.Diag != nil {
		for _, e := range m.Diag.Entries() {
			fmt.Fprintln(os.Stderr, e.Format())
		}
	}

	fmt.Printf("ran %d cycles, frame version %d\n", m.Cycle, m.VideoVersion())

	if *screenshot != "" {
		if err := writeScreenshot(*screenshot, m.Texture()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing screenshot: %v\n", err)
			os.Exit(1)
		}
	}
}

func parseVariant(name string) (machine.Variant, error) {
	switch name {
	case "b":
		return machine.VariantB, nil
	case "bplus":
		return machine.VariantBPlus, nil
	case "master":
		return machine.VariantMaster, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want b, bplus, or master)", name)
	}
}

func attachDisc(m *machine.Machine, drive int, path string) error {
	if path == "" {
		return nil
	}
	img, err := discimage.LoadFromFile(path)
	if err != nil {
		return err
	}
	m.SetDiscImage(drive, img)
	return nil
}

// writeScreenshot dumps the TV's published texture as a PNG, useful for
// checking a ROM actually produced a picture without pulling in a
// windowing toolkit.
func writeScreenshot(path string, texture []uint32) error {
	img := image.NewRGBA(image.Rect(0, 0, video.TextureWidth, video.TextureHeight))
	for y := 0; y < video.TextureHeight; y++ {
		for x := 0; x < video.TextureWidth; x++ {
			px := texture[y*video.TextureWidth+x]
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(px >> 16),
				G: uint8(px >> 8),
				B: uint8(px),
				A: 0xFF,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
