// Package document reads and writes the text files quill analyzes.
package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StdinPath names standard input on the command line.
const StdinPath = "-"

// Load reads a file and returns its text in NFC form so composed and
// decomposed accents produce the same offsets.
func Load(path string) (string, error) {
	if path == StdinPath {
		return Read(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return norm.NFC.String(string(data)), nil
}

// Info records how loaded text differs from the bytes on disk.
type Info struct {
	// Normalized is set when NFC changed the file's bytes.
	Normalized bool
	// CRLF is set when the file uses \r\n line endings.
	CRLF bool
}

// LoadInfo is Load for files that may be written back. Line endings are
// left as they are; Info tells the caller what a write would change.
func LoadInfo(path string) (string, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Info{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	raw := string(data)
	text := norm.NFC.String(raw)
	return text, Info{
		Normalized: text != raw,
		CRLF:       strings.Contains(raw, "\r\n"),
	}, nil
}

// RestoreLineEndings converts \n back to \r\n for files loaded with CRLF.
func RestoreLineEndings(text string, info Info) string {
	if !info.CRLF {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
}

// Read returns NFC-normalized text from r.
func Read(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return norm.NFC.String(string(data)), nil
}

// Write replaces the file atomically through a temp file in the same directory.
func Write(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create document dir: %w", err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmpFile, err := os.CreateTemp(dir, ".quill-*")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(text); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush document: %w", err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set document mode: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Key returns the absolute path used to file runs and sessions for a document.
func Key(path string) string {
	if path == StdinPath {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
