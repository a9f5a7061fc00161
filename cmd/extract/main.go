// Command extract prints the text the analyser would send to a provider for
// one PDF, which helps when tuning OCR languages and DPI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"cv-analyser/internal/config"
	"cv-analyser/internal/extractor"
	"cv-analyser/internal/logging"
	"cv-analyser/internal/logging/adapters"
)

func main() {
	file := flag.String("file", "", "PDF to extract")
	lang := flag.String("lang", "", "tesseract languages, e.g. eng+fra")
	dpi := flag.Int("dpi", 0, "render resolution for OCR")
	configPath := flag.String("config", "", "optional YAML configuration file")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -file cv.pdf [-lang eng+fra] [-dpi 300] [-config path]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *lang != "" {
		cfg.Extractor.Languages = strings.Split(*lang, "+")
	}
	if *dpi > 0 {
		cfg.Extractor.DPI = *dpi
	}

	// diagnostics go to stderr so stdout stays valid JSON
	logger := logging.NewMultiLogger()
	logger.SetLevel(logging.ParseLogLevel(cfg.Logging.Level))
	_ = logger.AddAdapter(adapters.NewStdoutAdapter("stderr", adapters.StdoutConfig{Format: "text", Writer: os.Stderr}))
	defer logger.Close()

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *file, err)
		os.Exit(1)
	}

	result, err := extractor.New(cfg, logger).Extract(context.Background(), data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
