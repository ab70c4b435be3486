// Command klausurgen generates exam documents and reorders PDFs without the
// HTTP server. The KaSuSId counter lives in a local SQLite file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/logger"
)

const usage = `Usage: klausurgen <command> [flags] [args]

Commands:
  generate  exam.json            assemble, compile and reorder one exam
  reorder   -o out.pdf in.pdf... reorder one or more PDFs for duplex printing
  validate  file.pdf...          report whether files are readable PDFs
`

func main() {
	cfg := config.Load()
	log := logger.SetupStderr(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "generate":
		err = runGenerate(cfg, log, args)
	case "reorder":
		err = runReorder(cfg, log, args)
	case "validate":
		err = runValidate(args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
