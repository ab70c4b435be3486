package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/allocator"
	"github.com/stemsi/klausurgen/internal/compiler"
	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/database"
	"github.com/stemsi/klausurgen/internal/latex"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/pdf"
	"github.com/stemsi/klausurgen/internal/service"
	"github.com/stemsi/klausurgen/internal/storage"
)

func runGenerate(cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("out", cfg.OutputDir, "Output directory")
	counter := fs.String("counter", cfg.CounterDSN, "SQLite DSN of the KaSuSId counter")
	logo := fs.String("logo", "", "School logo (png, jpeg or pdf)")
	assets := fs.String("assets", "", "Directory with graphics referenced by \\includegraphics")
	keepTex := fs.Bool("tex", false, "Also write the generated LaTeX source")
	pattern := fs.String("pattern", "", "Reorder pattern, e.g. 3,0,1,2")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("generate expects exactly one exam file")
	}

	exam, err := loadExam(fs.Arg(0), *logo)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// ─── Counter ───────────────────────────────────────────────────────
	db, err := database.OpenSQLite(ctx, *counter, log)
	if err != nil {
		return err
	}
	defer db.Close()
	alloc, err := allocator.NewSQLite(ctx, db)
	if err != nil {
		return err
	}

	// ─── Pipeline ──────────────────────────────────────────────────────
	reorderPattern := cfg.ReorderPattern
	if *pattern != "" {
		if reorderPattern = config.ParsePattern(*pattern); reorderPattern == nil {
			return fmt.Errorf("invalid pattern %q", *pattern)
		}
	}
	reorderer, err := pdf.NewReorderer(reorderPattern, log)
	if err != nil {
		return err
	}
	store, err := storage.NewFSStore(*out)
	if err != nil {
		return err
	}
	var graphics service.GraphicStore
	if *assets != "" {
		graphics = dirGraphics(*assets)
	}
	client := compiler.New(compiler.Config{
		URL:      cfg.LatexAPIURL,
		Compiler: cfg.LatexCompiler,
		Timeout:  cfg.CompileTimeout,
	}, log)
	gen := service.NewGenerationService(latex.NewAssembler(alloc, log), client, reorderer, graphics, store, log)

	result, err := gen.Run(ctx, exam, func(p model.Progress) {
		log.Info().Int("percent", p.Percent).Msg(p.Message)
	})
	if err != nil {
		return err
	}

	if *keepTex {
		texKey := strings.TrimSuffix(result.Location, ".pdf") + ".tex"
		if _, err := store.Put(texKey, strings.NewReader(result.Markup)); err != nil {
			return err
		}
	}

	path, err := store.Path(result.Location)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// loadExam reads a resolved exam from a JSON file.
func loadExam(path, logo string) (*model.Exam, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var exam model.Exam
	if err := json.Unmarshal(data, &exam); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	exam.Renumber()

	if logo != "" {
		blob, err := os.ReadFile(logo)
		if err != nil {
			return nil, err
		}
		if exam.School == nil {
			exam.School = &model.School{Code: exam.SchoolCode}
		}
		exam.School.Logo = blob
	}
	return &exam, nil
}

// dirGraphics serves every image in a directory to every question. The file
// name without extension is the name used in \includegraphics.
type dirGraphics string

func (d dirGraphics) ListForQuestions(_ context.Context, _ []int64) ([]model.Graphic, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		return nil, err
	}
	var out []model.Graphic
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		if ext == "" {
			continue
		}
		blob, err := os.ReadFile(filepath.Join(string(d), e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, model.Graphic{
			Name:     strings.TrimSuffix(e.Name(), "."+ext),
			FileType: latex.ImageExtension(blob, strings.ToLower(ext)),
			Blob:     blob,
		})
	}
	return out, nil
}
