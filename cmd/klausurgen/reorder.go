package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/pdf"
)

func runReorder(cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("reorder", flag.ContinueOnError)
	out := fs.String("o", "", "Output file")
	pattern := fs.String("pattern", "", "Reorder pattern, e.g. 3,0,1,2")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || fs.NArg() == 0 {
		return errors.New("reorder expects -o and at least one input file")
	}

	p := cfg.ReorderPattern
	if *pattern != "" {
		if p = config.ParsePattern(*pattern); p == nil {
			return fmt.Errorf("invalid pattern %q", *pattern)
		}
	}
	r, err := pdf.NewReorderer(p, log)
	if err != nil {
		return err
	}

	if fs.NArg() == 1 {
		err = r.ReorderFile(fs.Arg(0), *out)
	} else {
		err = r.ReorderMultipleFiles(fs.Args(), *out)
	}
	if err != nil {
		return err
	}
	log.Info().Strs("in", fs.Args()).Str("out", *out).Msg("Reordered")
	return nil
}

func runValidate(args []string) error {
	if len(args) == 0 {
		return errors.New("validate expects at least one file")
	}
	bad := 0
	for _, path := range args {
		ok, pages := pdf.ValidateFile(path)
		if !ok {
			bad++
			fmt.Printf("%s\tinvalid\n", path)
			continue
		}
		fmt.Printf("%s\tok\t%d pages\n", path, pages)
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d files invalid", bad, len(args))
	}
	return nil
}
