package input

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/recon/internal/ir"
)

// SpreadsheetMediaType is the only container type accepted into a slot.
const SpreadsheetMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// acceptedExtensions maps the accepted file extensions to their declared type.
var acceptedExtensions = map[string]string{
	".xlsx": SpreadsheetMediaType,
}

var (
	// ErrNoCandidate is returned when admission is asked to admit nothing.
	ErrNoCandidate = errors.New("no file candidate")
	// ErrNotAccepted is returned for files whose declared type is not accepted.
	ErrNotAccepted = errors.New("file type not accepted")
)

// Admit loads the first candidate path and returns it as an input file.
// Extra candidates are ignored: one file per interaction.
func Admit(paths ...string) (ir.InputFile, error) {
	if len(paths) == 0 || paths[0] == "" {
		return ir.InputFile{}, ErrNoCandidate
	}
	path := paths[0]

	mediaType, err := DeclaredType(path)
	if err != nil {
		return ir.InputFile{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ir.InputFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	return newInputFile(filepath.Base(path), mediaType, data), nil
}

// AdmitBytes admits an in-memory file. An empty mediaType is inferred from
// the file name's extension; an explicit one must be the accepted type.
func AdmitBytes(name, mediaType string, data []byte) (ir.InputFile, error) {
	if name == "" {
		return ir.InputFile{}, ErrNoCandidate
	}
	if mediaType == "" {
		inferred, err := DeclaredType(name)
		if err != nil {
			return ir.InputFile{}, err
		}
		mediaType = inferred
	}
	if !Accepts(mediaType) {
		return ir.InputFile{}, fmt.Errorf("%w: %s declares %q", ErrNotAccepted, name, mediaType)
	}
	return newInputFile(name, mediaType, data), nil
}

// DeclaredType returns the media type a file declares through its extension.
func DeclaredType(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	mediaType, ok := acceptedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s (only .xlsx spreadsheets are accepted)", ErrNotAccepted, name)
	}
	return mediaType, nil
}

// Accepts reports whether a declared media type may enter a slot.
// Parameters such as "; charset=" are ignored.
func Accepts(mediaType string) bool {
	mainType := strings.Split(mediaType, ";")[0]
	mainType = strings.TrimSpace(strings.ToLower(mainType))
	return mainType == SpreadsheetMediaType
}

func newInputFile(name, mediaType string, data []byte) ir.InputFile {
	return ir.InputFile{
		Name:      name,
		MediaType: mediaType,
		Data:      data,
		Digest:    ir.FileDigest(data),
	}
}
