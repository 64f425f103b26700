// Command loft evaluates a Loft script and writes the resulting parts as
// an STL file or as renderer-ready mesh JSON.
//
// Usage:
//
//	loft [-o output] [-format stl|json] script.loft
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/loft/pkg/design"
	"github.com/chazu/loft/pkg/engine"
	"github.com/chazu/loft/pkg/mesh"
)

// colorPalette assigns distinct viewer colors to parts in order.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON-serializable mesh format for viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
	Warnings []string  `json:"warnings,omitempty"`
}

func main() {
	var (
		output = flag.String("o", "", "output file (default: script name with .stl/.json extension)")
		format = flag.String("format", "stl", "output format: stl or json")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: loft [-o output] [-format stl|json] script.loft\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	script := flag.Arg(0)

	if *format != "stl" && *format != "json" {
		fmt.Fprintf(os.Stderr, "loft: unknown format %q (want stl or json)\n", *format)
		os.Exit(2)
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(script, filepath.Ext(script)) + "." + *format
	}

	if err := run(script, out, *format); err != nil {
		fmt.Fprintf(os.Stderr, "loft: %v\n", err)
		os.Exit(1)
	}
}

func run(script, out, format string) error {
	source, err := os.ReadFile(script)
	if err != nil {
		return err
	}

	d, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", script, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", script, e.Error())
		}
		return fmt.Errorf("%d evaluation errors", len(evalErrs))
	}
	if d.PartCount() == 0 {
		return fmt.Errorf("%s produced no parts (did the script call part?)", script)
	}

	for _, p := range d.Parts() {
		for _, w := range p.Warnings {
			fmt.Fprintf(os.Stderr, "%s: warning: %s: %s\n", script, p.Name, w)
		}
	}

	switch format {
	case "stl":
		return writeSTL(d, out)
	case "json":
		return writeJSON(d, out)
	}
	return fmt.Errorf("unknown format %q", format)
}

// writeSTL concatenates all parts into one solid and writes binary STL.
func writeSTL(d *design.Design, out string) error {
	meshes := make([]*mesh.Mesh, 0, d.PartCount())
	for _, p := range d.Parts() {
		meshes = append(meshes, p.Mesh)
	}
	combined := mesh.Concat(meshes...)
	if err := combined.SaveSTL(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d parts, %d triangles\n", out, d.PartCount(), len(combined.Triangles()))
	return nil
}

// writeJSON writes one MeshData entry per part, colored from the palette.
func writeJSON(d *design.Design, out string) error {
	data := make([]MeshData, 0, d.PartCount())
	for i, p := range d.Parts() {
		rm := p.Mesh.Render(p.Name)
		data = append(data, MeshData{
			Vertices: rm.Vertices,
			Normals:  rm.Normals,
			Indices:  rm.Indices,
			PartName: rm.PartName,
			Color:    colorPalette[i%len(colorPalette)],
			Warnings: p.Warnings,
		})
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d parts\n", out, d.PartCount())
	return nil
}
