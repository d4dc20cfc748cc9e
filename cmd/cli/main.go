package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tablewise/printstudio/internal/preview"
	"github.com/tablewise/printstudio/pkg/templatefmt"
)

func main() {
	var (
		file     = flag.String("file", "", "Template JSON file (flat array form); - for stdin, empty for the built-in default")
		family   = flag.String("family", "receipt", "Template family: receipt or kot")
		mode     = flag.String("mode", "receipt", "Render mode: bill, receipt or kot")
		format   = flag.String("format", "ansi", "Output format: text, ansi or png")
		out      = flag.String("out", "", "Output file (default stdout; required for png)")
		selected = flag.String("selected", "", "Block id to highlight")
	)
	flag.Parse()

	fam, err := templatefmt.ParseFamily(*family)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, ok := preview.ParseMode(*mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", *mode)
		os.Exit(1)
	}

	tpl := loadTemplate(*file, fam)
	doc := preview.Render(tpl, m, *selected, nil)

	switch *format {
	case "text":
		writeOutput(*out, []byte(strings.Join(doc.TextLines(), "\n")+"\n"))
	case "ansi":
		writeOutput(*out, []byte(preview.RenderANSI(doc)))
	case "png":
		if *out == "" {
			fmt.Fprintln(os.Stderr, "Error: -out is required for png output")
			os.Exit(1)
		}
		img, err := preview.RenderPNG(doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: render png: %v\n", err)
			os.Exit(1)
		}
		writeOutput(*out, img)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}
}

// loadTemplate reads the flat template array. Malformed or missing input
// degrades to the family default, matching the designer's behavior.
func loadTemplate(path string, family templatefmt.Family) templatefmt.Template {
	switch path {
	case "":
		return templatefmt.DefaultTemplate(family)
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read stdin: %v\n", err)
			os.Exit(1)
		}
		return templatefmt.Parse(data, family)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read %s: %v\n", path, err)
			os.Exit(1)
		}
		return templatefmt.Parse(data, family)
	}
}

func writeOutput(path string, data []byte) {
	if path == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write %s: %v\n", path, err)
		os.Exit(1)
	}
}
