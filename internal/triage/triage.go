// Package triage routes submitted files to a file kind by extension.
package triage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// ErrUnsupportedFileType indicates an extension that maps to no file kind.
var ErrUnsupportedFileType = errors.New("unsupported file type")

var extensions = map[string]evidence.FileKind{
	".pdf":  evidence.KindDocument,
	".xls":  evidence.KindTabular,
	".xlsx": evidence.KindTabular,
	".csv":  evidence.KindTabular,
	".jpg":  evidence.KindImage,
	".jpeg": evidence.KindImage,
	".png":  evidence.KindImage,
}

// Item is a file accepted for extraction.
type Item struct {
	File evidence.FileRef
	Ext  string
	Kind evidence.FileKind
}

// Ext returns the lowercased extension of a storage URI or filename,
// ignoring any query string.
func Ext(name string) string {
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(path.Ext(name))
}

// Kind returns the file kind for an extension.
func Kind(ext string) (evidence.FileKind, error) {
	k, ok := extensions[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	return k, nil
}

// Route resolves the kind of one file. The storage URI decides; the
// filename is consulted only when the URI carries no extension.
func Route(f evidence.FileRef) (Item, error) {
	ext := Ext(f.StorageURI)
	if ext == "" {
		ext = Ext(f.FileName)
	}

	kind, err := Kind(ext)
	if err != nil {
		return Item{}, err
	}

	return Item{File: f, Ext: ext, Kind: kind}, nil
}

// Files routes every file, preserving submission order. Files with an
// unsupported extension are returned separately and are not an error.
func Files(files []evidence.FileRef) (accepted []Item, skipped []evidence.FileRef) {
	for _, f := range files {
		item, err := Route(f)
		if err != nil {
			skipped = append(skipped, f)
			continue
		}
		accepted = append(accepted, item)
	}
	return accepted, skipped
}
