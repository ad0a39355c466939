package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/rasterx"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/glyphmesh"
	"github.com/tdewolff/glyphmesh/font"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type Main struct{}

type Info struct {
	Verbose bool   `short:"v" desc:"Log debug messages"`
	Input   string `index:"0" desc:"Font file"`
}

type Glyph struct {
	Char    string `short:"c" desc:"Unicode character"`
	GlyphID int    `short:"g" default:"-1" desc:"Glyph ID"`
	Verbose bool   `short:"v" desc:"Log debug messages"`
	Input   string `index:"0" desc:"Font file"`
}

type Mesh struct {
	Text    string `short:"t" desc:"Text"`
	Engine  string `short:"e" default:"earclip" desc:"Triangulation engine, earclip or sweep"`
	Steps   int    `short:"s" default:"0" desc:"Line segments per curve, zero uses the raw outline points"`
	Skip    bool   `desc:"Skip pieces that fail to triangulate"`
	Verbose bool   `short:"v" desc:"Log debug messages"`
	Input   string `index:"0" desc:"Font file"`
}

type Show struct {
	Text      string `short:"t" desc:"Text"`
	Engine    string `short:"e" default:"earclip" desc:"Triangulation engine, earclip or sweep"`
	Steps     int    `short:"s" default:"4" desc:"Line segments per curve, zero uses the raw outline points"`
	PPEM      int    `default:"40" desc:"Pixels per em-square"`
	Wireframe bool   `short:"w" desc:"Draw the triangle edges"`
	Output    string `short:"o" desc:"Output filename, prints to the terminal if empty"`
	Verbose   bool   `short:"v" desc:"Log debug messages"`
	Input     string `index:"0" desc:"Font file"`
}

func main() {
	root := argp.NewCmd(&Main{}, "Triangulate TrueType glyphs into meshes")
	root.AddCmd(&Info{}, "info", "Font tables and metrics")
	root.AddCmd(&Glyph{}, "glyph", "Glyph outline")
	root.AddCmd(&Mesh{}, "mesh", "Triangulate glyphs")
	root.AddCmd(&Show{}, "show", "Rasterize triangulated glyphs to the terminal or an image")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Main) Run() error {
	return argp.ShowUsage
}

func setVerbose(verbose bool) {
	if verbose {
		glyphmesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

func options(engine string, steps int, skip bool) (glyphmesh.Options, error) {
	o := glyphmesh.DefaultOptions
	switch strings.ToLower(engine) {
	case "", "earclip":
		o.Engine = glyphmesh.EarClipping
	case "sweep":
		o.Engine = glyphmesh.Sweep
	default:
		return o, fmt.Errorf("unknown engine: %s", engine)
	}
	if steps < 0 {
		return o, fmt.Errorf("steps must be positive")
	}
	o.CurveSteps = steps
	o.SkipFailed = skip
	return o, nil
}

func (cmd *Info) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}
	setVerbose(cmd.Verbose)

	f, err := font.LoadFont(cmd.Input)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", filepath.Base(cmd.Input))
	if name := f.FamilyName(); name != "" {
		fmt.Printf("Family: %s\n", name)
	}
	fmt.Printf("sfntVersion: 0x%08X\n", f.Directory.SFNTVersion)

	nLen := int(math.Log10(float64(len(f.Data))) + 1)
	fmt.Printf("\nTable directory:\n")
	for i, record := range f.Directory.Records {
		check := "ok"
		if !record.VerifyChecksum(f.Data) {
			check = "bad"
		}
		fmt.Printf("  %2d  %v  checksum=0x%08X (%s)  offset=%*d  length=%*d\n", i, record.Tag, record.Checksum, check, nLen, record.Offset, nLen, record.Length)
	}

	fmt.Printf("\nhead:\n")
	fmt.Printf("  unitsPerEm: %d\n", f.Head.UnitsPerEm)
	fmt.Printf("  bounds: (%d,%d)-(%d,%d)\n", f.Head.XMin, f.Head.YMin, f.Head.XMax, f.Head.YMax)
	fmt.Printf("  indexToLocFormat: %d\n", f.Head.IndexToLocFormat)
	fmt.Printf("\nmaxp:\n")
	fmt.Printf("  numGlyphs: %d\n", f.Maxp.NumGlyphs)
	fmt.Printf("  maxPoints: %d\n", f.Maxp.MaxPoints)
	fmt.Printf("  maxContours: %d\n", f.Maxp.MaxContours)
	fmt.Printf("  maxComponentDepth: %d\n", f.Maxp.MaxComponentDepth)
	fmt.Printf("\nhhea:\n")
	fmt.Printf("  ascender: %d\n", f.Hhea.Ascender)
	fmt.Printf("  descender: %d\n", f.Hhea.Descender)
	fmt.Printf("  lineGap: %d\n", f.Hhea.LineGap)
	fmt.Printf("  numberOfHMetrics: %d\n", f.Hhea.NumberOfHMetrics)
	fmt.Printf("\ncmap:\n")
	fmt.Printf("  format: %d\n", f.Cmap.Format)
	fmt.Printf("  segments: %d\n", f.Cmap.NumSegments())
	n := 0
	f.Cmap.Ranges(func(start, end rune) {
		n += int(end-start) + 1
	})
	fmt.Printf("  code points: %d\n", n)
	return nil
}

func (cmd *Glyph) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}
	setVerbose(cmd.Verbose)

	f, err := font.LoadFont(cmd.Input)
	if err != nil {
		return err
	}

	glyphID := cmd.GlyphID
	if cmd.Char != "" {
		rs := []rune(cmd.Char)
		if len(rs) != 1 {
			return fmt.Errorf("char must be one Unicode character")
		}
		glyphID = int(f.GlyphIndexFor(rs[0]))
	} else if glyphID < 0 {
		fmt.Println("ERROR: must specify char or glyph ID")
		return argp.ShowUsage
	} else if math.MaxUint16 < glyphID {
		return fmt.Errorf("glyph ID must be less than %d", math.MaxUint16+1)
	}

	outline, err := f.Outline(uint16(glyphID))
	if err != nil {
		return err
	}
	fmt.Print(outline)
	fmt.Printf("  Advance: %d\n", f.AdvanceWidth(outline.GlyphID))
	return nil
}

func (cmd *Mesh) Run() error {
	if cmd.Input == "" || cmd.Text == "" {
		return argp.ShowUsage
	}
	setVerbose(cmd.Verbose)

	o, err := options(cmd.Engine, cmd.Steps, cmd.Skip)
	if err != nil {
		return err
	}
	f, err := font.LoadFont(cmd.Input)
	if err != nil {
		return err
	}

	for _, r := range cmd.Text {
		outline := f.OutlineFor(r)
		meshes, err := o.Assemble(outline)
		if err != nil {
			return fmt.Errorf("%q: %w", r, err)
		}

		area, contourArea := 0.0, 0.0
		for _, contour := range glyphmesh.Contours(outline, o.CurveSteps) {
			contourArea += contour.SignedArea()
		}
		fmt.Printf("%q glyphID=%d pieces=%d\n", r, outline.GlyphID, len(meshes))
		for i, mesh := range meshes {
			fmt.Printf("  %d: vertices=%d triangles=%d area=%g\n", i, len(mesh.Vertices), len(mesh.Triangles), mesh.Area())
			area += mesh.Area()
		}
		fmt.Printf("  area=%g contours=%g\n", area, math.Abs(contourArea))
	}
	return nil
}

func (cmd *Show) Run() error {
	if cmd.Input == "" || cmd.Text == "" {
		return argp.ShowUsage
	}
	setVerbose(cmd.Verbose)
	terminal := cmd.Output == "" || cmd.Output == "-"

	o, err := options(cmd.Engine, cmd.Steps, true)
	if err != nil {
		return err
	}
	f, err := font.LoadFont(cmd.Input)
	if err != nil {
		return err
	}

	if cmd.PPEM <= 0 {
		return fmt.Errorf("ppem must be positive")
	}
	ratio := 1.0
	if terminal {
		ratio = 2.0 // characters are twice as high as wide
	}
	scale := float64(cmd.PPEM) / float64(f.UnitsPerEm())
	padding := cmd.PPEM / 5

	// lay out the glyphs along the baseline, with y pointing down
	meshes := []glyphmesh.Mesh{}
	x := float64(padding)
	for _, r := range cmd.Text {
		pieces, err := o.Assemble(f.OutlineFor(r))
		if err != nil {
			return fmt.Errorf("%q: %w", r, err)
		}
		for _, mesh := range pieces {
			meshes = append(meshes, mesh.Transform(scale*ratio, -scale, glyphmesh.Point{X: x, Y: float64(padding) + float64(f.Hhea.Ascender)*scale}))
		}
		x += float64(f.AdvanceWidthFor(r)) * scale * ratio
	}

	width := int(x+0.5) + padding
	height := int(float64(f.Hhea.Ascender-f.Hhea.Descender)*scale+0.5) + 2*padding
	if terminal && 160 < width {
		return fmt.Errorf("width cannot exceed 160 for terminal output")
	} else if 4096 < width || 4096 < height {
		return fmt.Errorf("image cannot exceed 4096 pixels")
	}

	rect := image.Rect(0, 0, width, height)
	img := image.NewRGBA(rect)
	draw.Draw(img, rect, image.NewUniform(color.White), image.Point{}, draw.Src)

	ras := vector.NewRasterizer(width, height)
	for _, mesh := range meshes {
		for _, tri := range mesh.Triangles {
			a, b, c := mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]
			ras.MoveTo(float32(a.X), float32(a.Y))
			ras.LineTo(float32(b.X), float32(b.Y))
			ras.LineTo(float32(c.X), float32(c.Y))
			ras.ClosePath()
		}
	}
	ras.Draw(img, rect, image.NewUniform(color.Black), image.Point{})
	if cmd.Wireframe {
		drawWireframe(img, meshes)
	}

	if terminal {
		printASCII(img)
		return nil
	}

	ext := strings.ToLower(filepath.Ext(cmd.Output))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".gif" {
		return fmt.Errorf("output extension must be PNG, JPG, or GIF")
	}

	w, err := os.Create(cmd.Output)
	if err != nil {
		return err
	}
	defer w.Close()

	switch ext {
	case ".png":
		err = png.Encode(w, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, img, nil)
	case ".gif":
		err = gif.Encode(w, img, nil)
	}
	return err
}

func drawWireframe(img draw.Image, meshes []glyphmesh.Mesh) {
	size := img.Bounds().Size()
	scanner := rasterx.NewScannerGV(size.X, size.Y, img, img.Bounds())
	dasher := rasterx.NewDasher(size.X, size.Y, scanner)
	dasher.SetStroke(fixed.Int26_6(64), 0, rasterx.ButtCap, rasterx.ButtCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	dasher.SetColor(color.RGBA{0xE0, 0x40, 0x40, 0xFF})
	for _, mesh := range meshes {
		for _, tri := range mesh.Triangles {
			a, b, c := mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]
			dasher.Start(rasterx.ToFixedP(a.X, a.Y))
			dasher.Line(rasterx.ToFixedP(b.X, b.Y))
			dasher.Line(rasterx.ToFixedP(c.X, c.Y))
			dasher.Stop(true)
		}
	}
	dasher.Draw()
}

func printASCII(img image.Image) {
	palette := []byte("$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. ")

	size := img.Bounds().Max
	sb := strings.Builder{}
	for j := 0; j < size.Y; j++ {
		for i := 0; i < size.X; i++ {
			r, g, b, _ := img.At(i, j).RGBA()
			y, _, _ := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			idx := int(float64(y)/255.0*float64(len(palette)-1) + 0.5)
			sb.WriteByte(palette[idx])
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
}
