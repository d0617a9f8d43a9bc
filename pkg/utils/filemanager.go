// =============================================================================
// EDI 944 Mapper - File Manager
// =============================================================================
//
// Shared file handling for the conversion pipeline: directory bootstrap,
// input discovery, archival of processed files and output file naming.
//
// ARCHIVAL RULES:
//   - input files are MOVED to the input archive after successful processing
//   - generated documents are COPIED to the output archive
//   - name collisions in an archive get a timestamp suffix rather than
//     overwriting earlier runs
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the pipeline's directory layout.
type FileManager struct {
	// InputDir is scanned for receipt extracts.
	InputDir string

	// OutputDir receives generated documents.
	OutputDir string

	// InputArchiveDir receives processed input files.
	InputArchiveDir string

	// OutputArchiveDir receives copies of generated documents.
	OutputArchiveDir string
}

// NewFileManager creates a FileManager over the four pipeline directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
	}
}

// EnsureDirectories creates any missing pipeline directories.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DiscoverInputFiles returns input files whose extension is in the given
// set (e.g. ".txt", ".csv", ".xlsx"), sorted by filepath.Walk order.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.Walk(fm.InputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	return files, nil
}

// ArchiveInputFile moves a processed input file into the input archive and
// returns the archive path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.archivePath(fm.InputArchiveDir, filePath)
	if err := os.Rename(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive input file: %w", err)
	}
	return archivePath, nil
}

// ArchiveOutputFile copies a generated document into the output archive and
// returns the archive path.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	archivePath := fm.archivePath(fm.OutputArchiveDir, filePath)
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output file: %w", err)
	}
	return archivePath, nil
}

// archivePath picks a collision-free destination inside an archive
// directory. An existing file of the same name gets a timestamp suffix.
func (fm *FileManager) archivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)
	dest := filepath.Join(archiveDir, fileName)
	if !FileExists(dest) {
		return dest
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	stamped := fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(archiveDir, stamped)
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// GenerateOutputFileName expands an output name format. Recognized
// placeholders: {uuid}, {timestamp}, {partner}. A missing .edi extension is
// appended.
func GenerateOutputFileName(format, partnerCode string) string {
	name := format
	name = strings.ReplaceAll(name, "{uuid}", uuid.New().String())
	name = strings.ReplaceAll(name, "{timestamp}", time.Now().Format("20060102_150405"))
	name = strings.ReplaceAll(name, "{partner}", partnerCode)

	if filepath.Ext(name) == "" {
		name += ".edi"
	}
	return name
}

// =============================================================================
// HELPERS
// =============================================================================

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// FileExists reports whether a path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
