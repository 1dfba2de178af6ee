// Package mimetype guesses a Content-Type from a file extension.
package mimetype

import (
	"mime"
	"path/filepath"
	"strings"
)

// Default is returned for unknown extensions.
const Default = "text/plain"

// builtin keeps the common types independent of the host's mime.types files.
var builtin = map[string]string{
	".css":   "text/css",
	".csv":   "text/csv",
	".gif":   "image/gif",
	".htm":   "text/html",
	".html":  "text/html",
	".ico":   "image/x-icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "application/javascript",
	".json":  "application/json",
	".md":    "text/markdown",
	".mjs":   "application/javascript",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".toml":  "text/x-toml",
	".txt":   "text/plain",
	".wasm":  "application/wasm",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "text/xml",
	".yaml":  "text/x-yaml",
	".yml":   "text/x-yaml",
	".zip":   "application/zip",
}

// FromPath returns the media type for the extension of path, without
// parameters. Unknown extensions give Default.
func FromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return Default
	}
	if t, ok := builtin[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		// "text/html; charset=utf-8" -> "text/html"
		return strings.TrimSpace(strings.Split(t, ";")[0])
	}
	return Default
}
