/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command patronmap renders library records in their write and search
// projections, and prints the search index mapping and the registration
// form schema.
//
//	patronmap -mode search -in patron.json
//	curl -s .../patrons/1234567 | patronmap -load -mode canonical
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/suparena/cardreg"
	"github.com/suparena/cardreg/config"
	"github.com/suparena/cardreg/record"
	"github.com/suparena/cardreg/registry"
	"github.com/suparena/cardreg/searchindex"
)

var (
	typeFlag    = flag.String("type", "Patron", "Record type of the input")
	modeFlag    = flag.String("mode", "canonical", "Output: canonical, search, mapping or formschema")
	inFlag      = flag.String("in", "", "Input JSON file (default stdin)")
	loadFlag    = flag.Bool("load", false, "Treat the input as an API response rather than locally built input")
	debugFlag   = flag.Bool("debug", false, "Dump the parsed record to stderr")
	versionFlag = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *versionFlag {
		info := cardreg.GetVersionInfo()
		fmt.Printf("cardreg patronmap version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		os.Exit(0)
	}

	logger := slog.Default()
	if cfg, err := config.Load(); err == nil {
		logger = cfg.Logger()
	}

	if err := run(os.Stdout, logger); err != nil {
		logger.Error("patronmap failed", "error", err)
		os.Exit(1)
	}
}

func run(out io.Writer, logger *slog.Logger) error {
	switch *modeFlag {
	case "mapping":
		m, err := searchindex.DefaultMapping()
		if err != nil {
			return err
		}
		return writeJSON(out, m.IndexDefinition(m.Index))
	case "formschema":
		return writeJSON(out, cardreg.FormSchema())
	case "canonical", "search":
	default:
		return fmt.Errorf("unknown mode %q", *modeFlag)
	}

	schema, ok := registry.LookupRecord(*typeFlag)
	if !ok {
		return fmt.Errorf("unknown record type %q (known: %s)", *typeFlag, strings.Join(registry.RecordNames(), ", "))
	}

	raw, err := readInput()
	if err != nil {
		return err
	}

	build := schema.New
	if *loadFlag {
		build = schema.Load
	}
	rec, err := build(raw)
	if err != nil {
		return err
	}
	if *debugFlag {
		spew.Fdump(os.Stderr, rec)
	}
	logger.Debug("record parsed", "type", schema.TypeName(), "modified", rec.Base().Modified())

	return writeJSON(out, project(*modeFlag, rec))
}

// project renders rec the way it appears inside a parent document: bare
// values stay bare and a suppressed record prints as an empty document.
func project(mode string, rec record.Typed) any {
	var (
		v  any
		ok bool
	)
	if mode == "search" {
		v, ok = record.SearchValue(rec)
	} else {
		v, ok = record.CanonicalValue(rec)
	}
	if !ok {
		return map[string]any{}
	}
	return v
}

func readInput() (any, error) {
	var r io.Reader = os.Stdin
	if *inFlag != "" {
		f, err := os.Open(*inFlag)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return raw, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
