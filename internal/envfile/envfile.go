// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envfile loads conversion defaults from an optional .env file.
// Recognized keys: INPUT_FOLDER, OUTPUT_FOLDER, TMP_PDF_FOLDER,
// HASH_DB_PATH, RECURSIVE. Variables already present in the process
// environment take precedence over file values.
package envfile

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Recognized environment keys.
const (
	KeyInputFolder  = "INPUT_FOLDER"
	KeyOutputFolder = "OUTPUT_FOLDER"
	KeyTmpPDFFolder = "TMP_PDF_FOLDER"
	KeyHashDBPath   = "HASH_DB_PATH"
	KeyRecursive    = "RECURSIVE"
)

// Defaults holds the directory defaults resolved from the environment.
type Defaults struct {
	SourceDir  string
	OutputDir  string
	TmpPDFDir  string
	HashDBPath string
	Recursive  bool
}

// Load reads the env file at path (if it exists) into the process
// environment and returns the resolved defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Defaults, error) {
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return Defaults{}, err
		}
	}

	d := Defaults{
		SourceDir:  getenv(KeyInputFolder, "source"),
		OutputDir:  getenv(KeyOutputFolder, "md"),
		TmpPDFDir:  getenv(KeyTmpPDFFolder, "tmp_pdf"),
		HashDBPath: getenv(KeyHashDBPath, "./file_hashes.json"),
	}
	d.Recursive = parseBool(os.Getenv(KeyRecursive))
	return d, nil
}

// getenv returns the trimmed value of key, or fallback when unset or blank.
func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseBool accepts the usual spellings ("1", "true", "yes", "on");
// anything else, including empty, is false.
func parseBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "yes", "on":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
