package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// LogExt is the transcript file extension the walker looks for.
const LogExt = ".jsonl"

// Discover walks root recursively and returns absolute paths of all regular
// files ending in LogExt. Unreadable directories are skipped silently, and a
// missing or unreadable root yields no files rather than an error.
func Discover(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), LogExt) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		files = append(files, abs)
		return nil
	})
	return files
}
