package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// Dialect selects the grammar a source file is parsed with.
type Dialect string

const (
	// DialectTSX covers JSX-capable sources (.tsx, .jsx, .js, .mjs, .cjs).
	DialectTSX Dialect = "tsx"

	// DialectTypeScript covers plain TypeScript sources (.ts, .mts, .cts), where
	// angle-bracket casts rule out JSX.
	DialectTypeScript Dialect = "typescript"
)

var extToDialect = map[string]Dialect{
	".tsx": DialectTSX,
	".jsx": DialectTSX,
	".js":  DialectTSX,
	".mjs": DialectTSX,
	".cjs": DialectTSX,
	".ts":  DialectTypeScript,
	".mts": DialectTypeScript,
	".cts": DialectTypeScript,
}

// DialectForPath returns the dialect for a file path based on its extension.
// Declaration files (.d.ts) are never rewritten.
func DialectForPath(path Path) (Dialect, bool) {
	p := strings.ToLower(string(path))
	if strings.HasSuffix(p, ".d.ts") || strings.HasSuffix(p, ".d.mts") || strings.HasSuffix(p, ".d.cts") {
		return "", false
	}

	d, ok := extToDialect[filepath.Ext(p)]

	return d, ok
}

// File represents a source code file.
type File struct {
	FullPath  Path
	ShortPath Path
	Hash      string
}

// Source is one module queued for transformation.
type Source struct {
	Origin  *File
	Dialect Dialect
}
