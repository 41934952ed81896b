// Package model holds the data types shared across the indexing, search and
// workflow packages: on-disk records, scope tuples and the shapes streamed
// back to the presentation layer.
package model

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidInput marks a request-shaped error: an empty keyword, a
// non-existent path, or similar caller mistakes.
var ErrInvalidInput = errors.New("invalid input")

// FileRecord is the value stored for every indexed path: a normalized,
// searchable name and the file's last-modified time.
type FileRecord struct {
	NormalizedName string
	ModifiedTime   uint64 // seconds since epoch
}

// Location maps an indexed root to the table currently authoritative for it.
type Location struct {
	Root  string
	Table string
}

// PathRecord pairs a path (relative to some root) with its record. It is the
// unit of work that flows through the scan/rescan channels.
type PathRecord struct {
	RelPath string
	Record  FileRecord
}

// DisplayResult is one indexed-search hit, ready for presentation.
type DisplayResult struct {
	AbsolutePath string
	IconTag      string
}

// LiveHit is one content-search hit from a live (unindexed) scan.
type LiveHit struct {
	Path    string
	Line    int // 1-based line number, or page/row number for pdf/xlsx
	Snippet string
}

// iconByExt maps a lowercase extension (without the dot) to a short
// presentation-facing tag. Unknown extensions fall back to iconGeneric.
var iconByExt = map[string]string{
	"txt": "text", "md": "text", "log": "text",
	"pdf":  "pdf",
	"doc":  "word", "docx": "word",
	"xls": "sheet", "xlsx": "sheet", "csv": "sheet",
	"ppt": "slides", "pptx": "slides",
	"zip": "archive", "rar": "archive", "7z": "archive", "tar": "archive", "gz": "archive",
	"jpg": "image", "jpeg": "image", "png": "image", "gif": "image", "bmp": "image", "svg": "image",
	"mp3": "audio", "wav": "audio", "flac": "audio", "ogg": "audio",
	"mp4": "video", "mkv": "video", "avi": "video", "mov": "video",
	"exe": "binary", "dll": "binary", "bin": "binary",
	"rs": "code", "py": "code", "js": "code", "html": "code", "css": "code",
	"json": "code", "xml": "code", "go": "code",
}

const iconGeneric = "generic"

// IconTagFor returns the presentation tag for a path, looked up by extension.
func IconTagFor(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if tag, ok := iconByExt[ext]; ok {
		return tag
	}
	return iconGeneric
}

// PlainTextExtensions are the extensions live content-search reads line by
// line rather than handing off to a dedicated parser.
var PlainTextExtensions = map[string]bool{
	"txt": true, "md": true, "log": true, "rs": true, "py": true, "js": true,
	"html": true, "css": true, "json": true, "xml": true, "toml": true,
}
