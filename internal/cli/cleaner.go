package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/models"
)

// OutputFileName is the file --write creates in each package root
const OutputFileName = "ngreflect.definitions.js"

// WriteDefinitions writes definitions to OutputFileName in root, one per
// line, and returns the written path
func WriteDefinitions(root string, definitions []models.GeneratedDefinition) (string, error) {
	var b strings.Builder
	b.WriteString("// Generated by ngreflect. DO NOT EDIT.\n")
	for _, d := range definitions {
		b.WriteString(d.Code)
		b.WriteByte('\n')
	}

	out := filepath.Join(root, OutputFileName)
	if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
		return "", errors.WrapFileSystemError("write", out, err)
	}
	return out, nil
}

// Cleaner removes previously written definition files
type Cleaner struct{}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes OutputFileName from every root and returns the removed
// paths. Roots without one are skipped.
func (c *Cleaner) Clean(roots []string) ([]string, error) {
	var removed []string
	for _, root := range roots {
		out := filepath.Join(root, OutputFileName)
		if _, err := os.Stat(out); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, errors.WrapFileSystemError("check", out, err)
		}
		if err := os.Remove(out); err != nil {
			return removed, errors.WrapFileSystemError("remove", out, err)
		}
		removed = append(removed, out)
	}
	return removed, nil
}
