package types

// ConversionBackend identifies the PDF-to-Markdown engine.
type ConversionBackend string

const (
	// BackendMinerU runs the MinerU CLI as a subprocess. Produces
	// Markdown plus extracted images.
	BackendMinerU ConversionBackend = "mineru"

	// BackendMarkitdown pipes PDFs through the markitdown container
	// image. Markdown only, no image extraction.
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConvertConfig holds settings for a batch conversion run.
type ConvertConfig struct {
	// SourceDir is the directory scanned for PDF and office files.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutputDir receives the generated Markdown files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ImagesDir receives images extracted by the parsing engine
	// (default: OutputDir/images).
	ImagesDir string `json:"images_dir" yaml:"images_dir"`

	// TmpPDFDir holds intermediate PDFs rendered from office files.
	TmpPDFDir string `json:"tmp_pdf_dir" yaml:"tmp_pdf_dir"`

	// HashDBPath is the path of the persisted path-to-hash database.
	HashDBPath string `json:"hash_db_path" yaml:"hash_db_path"`

	// HistoryDBPath is the path of the SQLite run-history database.
	// Empty disables history recording.
	HistoryDBPath string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`

	// Backend selects the PDF-to-Markdown engine.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// MinerUBin overrides the MinerU executable name (default "mineru").
	MinerUBin string `json:"mineru_bin,omitempty" yaml:"mineru_bin,omitempty"`

	// Recursive enables descent into subdirectories of SourceDir.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// KeepTmp retains intermediate PDFs after successful conversion.
	KeepTmp bool `json:"keep_tmp" yaml:"keep_tmp"`

	// Force converts every file regardless of the hash database.
	Force bool `json:"force" yaml:"force"`
}
