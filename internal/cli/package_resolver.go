package cli

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/toyz/ngreflect/internal/errors"
)

// ManifestFile is the package manifest read from every package root
const ManifestFile = "package.json"

// PackageManifest is the part of package.json entry point discovery reads
type PackageManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	ES2015  string `json:"es2015"`
	Module  string `json:"module"`
}

// CanonicalVersion returns the manifest version in canonical semver form,
// e.g. "6.0.0-rc.1" becomes "v6.0.0-rc.1". Invalid or missing versions
// return "".
func (m *PackageManifest) CanonicalVersion() string {
	if m == nil || m.Version == "" {
		return ""
	}
	v := m.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// PackageResolver finds the entry point of a package root
type PackageResolver struct {
	entryDirectory string
}

// NewPackageResolver creates a resolver falling back to
// <entryDirectory>/<name>.js when package.json names no entry
func NewPackageResolver(entryDirectory string) *PackageResolver {
	return &PackageResolver{entryDirectory: entryDirectory}
}

// ReadManifest reads package.json from root. A root without one returns
// nil and no error.
func (r *PackageResolver) ReadManifest(root string) (*PackageManifest, error) {
	manifestPath := filepath.Join(root, ManifestFile)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapFileSystemError("read", manifestPath, err)
	}

	manifest := &PackageManifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, errors.WrapFileSystemError("parse", manifestPath, err).
			WithSuggestion("Check that package.json is valid JSON")
	}
	return manifest, nil
}

// ResolveEntryPoint returns the entry point of root relative to it. The
// first of these wins: explicit, the manifest es2015 field, the manifest
// module field, <entry directory>/<last segment of the package name>.js.
func (r *PackageResolver) ResolveEntryPoint(root, explicit string, manifest *PackageManifest) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if manifest != nil {
		for _, field := range []string{manifest.ES2015, manifest.Module} {
			if field != "" {
				return filepath.FromSlash(strings.TrimPrefix(field, "./")), nil
			}
		}
	}

	name := ""
	if manifest != nil && manifest.Name != "" {
		name = path.Base(manifest.Name)
	} else {
		name = filepath.Base(root)
	}

	entry := filepath.Join(r.entryDirectory, name+".js")
	if _, err := os.Stat(filepath.Join(root, entry)); err != nil {
		return "", errors.EntryPointError(root, "no entry point found").
			WithContext("tried", entry).
			WithSuggestion("Add an es2015 or module field to package.json").
			WithSuggestion("Pass the entry point explicitly with --entry")
	}
	return entry, nil
}
