package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StatePath returns the state snapshot path for prefix (sampler.Prefix(false)),
// or override with its extension rewritten to .khs if the caller set
// FilePath explicitly.
func StatePath(prefix string, override *string) string {
	if override != nil {
		return rewriteExt(*override, ".khs")
	}
	return prefix + ".khs"
}

// DataPath returns the data snapshot path: "<prefix(with_hash)>.s<seed>.khd",
// or override with its extension rewritten to .khd.
func DataPath(prefixWithHash string, seed uint64, override *string) string {
	if override != nil {
		return rewriteExt(*override, ".khd")
	}
	return fmt.Sprintf("%s.s%d.khd", prefixWithHash, seed)
}

// RNGPath returns the RNG snapshot path: "<prefix(with_hash)>.s<seed>.khr",
// or override with its extension rewritten to .khr.
func RNGPath(prefixWithHash string, seed uint64, override *string) string {
	if override != nil {
		return rewriteExt(*override, ".khr")
	}
	return fmt.Sprintf("%s.s%d.khr", prefixWithHash, seed)
}

func rewriteExt(path, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + ext
}
