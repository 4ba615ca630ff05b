package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mdconvert/internal/batch"
	"github.com/pdiddy/mdconvert/internal/container"
	"github.com/pdiddy/mdconvert/internal/convert"
	"github.com/pdiddy/mdconvert/internal/discover"
	"github.com/pdiddy/mdconvert/internal/hashdb"
	"github.com/pdiddy/mdconvert/internal/history"
	"github.com/pdiddy/mdconvert/internal/office"
	"github.com/pdiddy/mdconvert/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert PDF and office files to Markdown",
	Long: `Convert scans the source directory for PDF and office files and turns
each one into Markdown plus extracted images. Office files are rendered
to a temporary PDF with LibreOffice first. Files whose content hash is
unchanged since the last successful run are skipped unless --force.

Per-file failures are reported and counted but never abort the batch,
and the run exits zero regardless (best-effort semantics). Use --file
to convert a single document instead of scanning a directory.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("source", "", "source directory (default: INPUT_FOLDER or \"source\")")
	convertCmd.Flags().String("output", "", "Markdown output directory (default: OUTPUT_FOLDER or \"md\")")
	convertCmd.Flags().String("images", "", "extracted image directory (default: <output>/images)")
	convertCmd.Flags().String("tmp-pdf", "", "temporary PDF directory for office files (default: TMP_PDF_FOLDER or \"tmp_pdf\")")
	convertCmd.Flags().String("hash-db", "", "hash database path (default: HASH_DB_PATH or ./file_hashes.json)")
	convertCmd.Flags().String("history-db", "", "run-history SQLite path (default: <output>/.mdconvert/history.db)")
	convertCmd.Flags().Bool("no-history", false, "disable run-history recording")
	convertCmd.Flags().String("backend", string(types.BackendMinerU), "conversion backend: mineru or markitdown")
	convertCmd.Flags().String("mineru-bin", "", "MinerU executable (default \"mineru\" on PATH)")
	convertCmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories (default: RECURSIVE)")
	convertCmd.Flags().String("file", "", "convert a single file instead of scanning the source directory")
	convertCmd.Flags().Bool("keep-tmp", false, "retain temporary PDFs rendered from office files")
	convertCmd.Flags().BoolP("force", "f", false, "convert every file, ignoring the hash database")

	rootCmd.AddCommand(convertCmd)
}

// setting resolves a string option: explicit flag, then config file or
// MDCONVERT_ environment, then the .env-derived fallback.
func setting(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(viperKey) {
		return viper.GetString(viperKey)
	}
	return fallback
}

func convertConfig(cmd *cobra.Command) types.ConvertConfig {
	cfg := types.ConvertConfig{
		SourceDir:  setting(cmd, "source", "source_dir", envDefaults.SourceDir),
		OutputDir:  setting(cmd, "output", "output_dir", envDefaults.OutputDir),
		TmpPDFDir:  setting(cmd, "tmp-pdf", "tmp_pdf_dir", envDefaults.TmpPDFDir),
		HashDBPath: setting(cmd, "hash-db", "hash_db_path", envDefaults.HashDBPath),
		Backend:    types.ConversionBackend(setting(cmd, "backend", "backend", string(types.BackendMinerU))),
		MinerUBin:  setting(cmd, "mineru-bin", "mineru_bin", ""),
	}

	cfg.ImagesDir = setting(cmd, "images", "images_dir", filepath.Join(cfg.OutputDir, "images"))

	if cmd.Flags().Changed("recursive") {
		cfg.Recursive, _ = cmd.Flags().GetBool("recursive")
	} else {
		cfg.Recursive = envDefaults.Recursive
	}
	cfg.KeepTmp, _ = cmd.Flags().GetBool("keep-tmp")
	cfg.Force, _ = cmd.Flags().GetBool("force")

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		cfg.HistoryDBPath = setting(cmd, "history-db", "history_db_path",
			filepath.Join(cfg.OutputDir, ".mdconvert", "history.db"))
	}
	return cfg
}

// newConverter builds the selected backend. A missing engine is fatal
// for the whole run: nothing can be converted without it.
func newConverter(cfg types.ConvertConfig) (convert.Converter, error) {
	switch cfg.Backend {
	case types.BackendMinerU:
		return convert.NewMinerUConverter(cfg.MinerUBin)
	case types.BackendMarkitdown:
		rt, err := container.Detect()
		if err != nil {
			return nil, err
		}
		return convert.NewMarkitdownConverter(rt)
	default:
		return nil, fmt.Errorf("unknown backend %q: use mineru or markitdown", cfg.Backend)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)

	converter, err := newConverter(cfg)
	if err != nil {
		return err
	}

	singleFile, _ := cmd.Flags().GetString("file")

	var jobs []types.Job
	var collisions []string
	if singleFile != "" {
		job, err := singleFileJob(singleFile)
		if err != nil {
			return err
		}
		jobs = []types.Job{job}
	} else {
		res, err := discover.Discover(cfg.SourceDir, cfg.Recursive)
		if err != nil {
			return err
		}
		jobs, collisions = res.Jobs, res.Collisions
		if len(jobs) == 0 && len(collisions) == 0 {
			fmt.Fprintf(os.Stdout, "no PDF or office files found in %s\n", cfg.SourceDir)
			return nil
		}
	}

	store := hashdb.Load(cfg.HashDBPath)

	// LibreOffice is optional: only office files need it, and each one
	// fails individually when it is missing.
	var officeConv batch.OfficeConverter
	suite, officeErr := office.Locate()
	if officeErr == nil {
		officeConv = suite
	}

	var rec batch.Recorder
	if cfg.HistoryDBPath != "" {
		hs, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		} else {
			defer hs.Close()
			rec = hs
		}
	}

	driver := batch.New(cfg, store, converter, officeConv, officeErr, rec)
	result := driver.Run(jobs, collisions, os.Stdout)

	// Best-effort batch: per-file failures are already reported and do
	// not make the run exit non-zero.
	if result.HasFailures() {
		fmt.Fprintf(os.Stderr, "%d file(s) failed conversion\n", result.Failed)
	}
	return nil
}

// singleFileJob validates the --file override and builds its job.
func singleFileJob(path string) (types.Job, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.Job{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return types.Job{}, fmt.Errorf("file %s does not exist", path)
	}
	kind, err := discover.Classify(abs)
	if err != nil {
		return types.Job{}, err
	}
	return types.Job{SourcePath: abs, RelDir: ".", Kind: kind}, nil
}
