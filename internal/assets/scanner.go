package assets

import (
	"bufio"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/openmined/cdnsync/internal/utils"
)

// Scanner enumerates the regular files under a root directory that pass the rules.
// Results are in lexical walk order, so repeated scans of an unchanged tree are identical.
type Scanner struct {
	rootDir string
	rules   Rules
}

func NewScanner(rootDir string, rules Rules) *Scanner {
	return &Scanner{rootDir: rootDir, rules: rules}
}

func (s *Scanner) Scan() ([]*cdn.LocalAsset, error) {
	root, err := utils.ResolvePath(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("asset root: %w", err)
	}
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("asset root %q is not a directory", root)
	}
	if err := s.rules.Validate(); err != nil {
		return nil, err
	}

	m := compile(s.rules, loadIgnoreFile(filepath.Join(root, IgnoreFileName)))

	var assets []*cdn.LocalAsset
	var total int64

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error: %w", walkErr)
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("walk rel path: %w", err)
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if m.skipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			slog.Debug("skipping non-regular file", "path", relPath, "mode", d.Type().String())
			return nil
		}

		if !m.keepFile(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("Failed to get file info", "path", path, "error", err)
			return nil
		}

		assets = append(assets, &cdn.LocalAsset{
			RelPath: relPath,
			AbsPath: path,
			Size:    info.Size(),
		})
		total += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("asset scan failed: %w", err)
	}

	slog.Info("scanned assets", "root", root, "files", len(assets), "size", humanize.Bytes(uint64(total)))
	return assets, nil
}

func loadIgnoreFile(ignorePath string) []string {
	if !utils.FileExists(ignorePath) {
		return nil
	}

	file, err := os.Open(ignorePath)
	if err != nil {
		slog.Warn("Failed to open ignore file", "path", ignorePath, "error", err)
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("Error reading ignore file", "path", ignorePath, "error", err)
	} else {
		slog.Debug("Loaded ignore file", "path", ignorePath, "rules", len(lines))
	}
	return lines
}
