package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/ngreflect/internal/errors"
)

const carSource = `
import { Injectable } from '@angular/core';
import { Engine } from './engine';
export class Car {
    constructor(engine) {}
}
Car.decorators = [{ type: Injectable }];
Car.ctorParameters = () => [{ type: Engine }];
`

const carDefinition = "Car.ngInjectableDef = defineInjectable({ providedIn: null, factory: function Car_Factory() { return new Car(inject(Engine)); } });"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newPackage creates a package root whose package.json is manifest and
// whose files are given relative to the root
func newPackage(t *testing.T, dir, manifest string, files map[string]string) string {
	t.Helper()
	if manifest != "" {
		writeFile(t, filepath.Join(dir, ManifestFile), manifest)
	}
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), append([]string{"--color", "never"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestResolveEntryPoint(t *testing.T) {
	resolver := NewPackageResolver("esm2015")

	tests := []struct {
		name     string
		manifest string
		files    []string
		explicit string
		expected string
		wantErr  bool
	}{
		{"explicit wins", `{"es2015": "./esm2015/x.js"}`, nil, "custom/entry.js", "custom/entry.js", false},
		{"es2015 field", `{"es2015": "./esm2015/common.js", "module": "./esm5/common.js"}`, nil, "", filepath.Join("esm2015", "common.js"), false},
		{"module field", `{"module": "./fesm5/common.js"}`, nil, "", filepath.Join("fesm5", "common.js"), false},
		{"package name", `{"name": "@angular/common"}`, []string{"esm2015/common.js"}, "", filepath.Join("esm2015", "common.js"), false},
		{"directory name", "", []string{"esm2015/lib.js"}, "", filepath.Join("esm2015", "lib.js"), false},
		{"nothing found", `{"name": "@angular/common"}`, nil, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "lib")
			require.NoError(t, os.MkdirAll(root, 0o755))
			files := map[string]string{}
			for _, f := range tt.files {
				files[f] = "export {};"
			}
			newPackage(t, root, tt.manifest, files)

			manifest, err := resolver.ReadManifest(root)
			require.NoError(t, err)

			entry, err := resolver.ResolveEntryPoint(root, tt.explicit, manifest)
			if tt.wantErr {
				var re errors.ReflectError
				require.True(t, stderrors.As(err, &re))
				assert.Equal(t, errors.EntryPointErrorCode, re.ErrorCode())
				assert.NotEmpty(t, re.Suggestions())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, entry)
		})
	}
}

func TestReadManifestErrors(t *testing.T) {
	resolver := NewPackageResolver("esm2015")

	manifest, err := resolver.ReadManifest(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, manifest)

	root := newPackage(t, t.TempDir(), "{not json", nil)
	_, err = resolver.ReadManifest(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ManifestFile)
}

func TestCanonicalVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"6.0.0", "v6.0.0"},
		{"v6.1", "v6.1.0"},
		{"6.0.0-rc.1+sha.abc", "v6.0.0-rc.1"},
		{"latest", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			m := &PackageManifest{Version: tt.version}
			assert.Equal(t, tt.expected, m.CanonicalVersion())
		})
	}

	var missing *PackageManifest
	assert.Empty(t, missing.CanonicalVersion())
}

func TestScanPackages(t *testing.T) {
	base := t.TempDir()
	newPackage(t, filepath.Join(base, "a"), `{"name": "a"}`, nil)
	newPackage(t, filepath.Join(base, "b", "nested"), `{"name": "nested"}`, nil)
	newPackage(t, filepath.Join(base, ".cache", "hidden"), `{"name": "hidden"}`, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "empty"), 0o755))

	scanner, err := NewDirectoryScanner()
	require.NoError(t, err)

	roots, err := scanner.ScanPackages([]string{base + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(base, "a"), filepath.Join(base, "b", "nested")}, roots)

	roots, err = scanner.ScanPackages([]string{filepath.Join(base, "a"), filepath.Join(base, "a")})
	require.NoError(t, err)
	assert.Len(t, roots, 1, "roots are deduplicated")

	_, err = scanner.ScanPackages([]string{filepath.Join(base, "missing")})
	assert.Error(t, err)

	writeFile(t, filepath.Join(base, "file.txt"), "x")
	_, err = scanner.ScanPackages([]string{filepath.Join(base, "file.txt")})
	assert.Error(t, err)
}

func TestScanPackagesExclude(t *testing.T) {
	base := t.TempDir()
	newPackage(t, filepath.Join(base, "core"), `{"name": "core"}`, nil)
	newPackage(t, filepath.Join(base, "core", "testing"), `{"name": "core/testing"}`, nil)
	newPackage(t, filepath.Join(base, "testing"), `{"name": "testing"}`, nil)
	newPackage(t, filepath.Join(base, "vendor", "lib"), `{"name": "lib"}`, nil)

	scanner, err := NewDirectoryScanner("**/testing", "vendor")
	require.NoError(t, err)

	roots, err := scanner.ScanPackages([]string{base + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(base, "core")}, roots)

	_, err = NewDirectoryScanner("[a")
	assert.Error(t, err)
}

func TestWriteAndClean(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()

	out, err := WriteDefinitions(root, nil)
	require.NoError(t, err)
	assert.FileExists(t, out)

	removed, err := NewCleaner().Clean([]string{root, other})
	require.NoError(t, err)
	assert.Equal(t, []string{out}, removed)
	assert.NoFileExists(t, out)
}

func TestExecutePrintsDefinitions(t *testing.T) {
	root := newPackage(t, t.TempDir(), `{"name": "@cars/core", "version": "1.2.3", "es2015": "./esm2015/core.js"}`, map[string]string{
		"esm2015/core.js": carSource,
	})

	code, stdout, stderr := execute(t, root)
	assert.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, carDefinition+"\n", stdout)
	assert.Contains(t, stderr, "@cars/core@v1.2.3")
	assert.Contains(t, stderr, "Definitions generated: 1")
}

func TestExecuteWriteMode(t *testing.T) {
	root := newPackage(t, t.TempDir(), `{"name": "core"}`, map[string]string{
		"esm2015/core.js": carSource,
	})

	code, stdout, stderr := execute(t, "--write", root)
	require.Equal(t, ExitOK, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Files written: 1")

	data, err := os.ReadFile(filepath.Join(root, OutputFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), carDefinition)

	code, _, _ = execute(t, "--clean", root)
	require.Equal(t, ExitOK, code)
	assert.NoFileExists(t, filepath.Join(root, OutputFileName))
}

func TestExecuteFailures(t *testing.T) {
	broken := `
import { Injectable } from '@angular/core';
export class Broken {
    constructor(mystery) {}
}
Broken.decorators = [{ type: Injectable }];
Broken.ctorParameters = () => [{ type: undefined }];
` + carSource

	t.Run("abort reports and exits 1", func(t *testing.T) {
		root := newPackage(t, t.TempDir(), `{"name": "core"}`, map[string]string{"esm2015/core.js": broken})
		code, stdout, stderr := execute(t, root)
		assert.Equal(t, ExitFailure, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "No suitable token for parameter mystery of class Broken")
		assert.Contains(t, stderr, "UnresolvedDependencyTokenError")
	})

	t.Run("isolate keeps healthy classes", func(t *testing.T) {
		root := newPackage(t, t.TempDir(), `{"name": "core"}`, map[string]string{"esm2015/core.js": broken})
		code, stdout, _ := execute(t, "--failure-policy", "isolate", root)
		assert.Equal(t, ExitFailure, code)
		assert.Equal(t, carDefinition+"\n", stdout)
	})

	t.Run("missing entry point", func(t *testing.T) {
		root := newPackage(t, t.TempDir(), `{"name": "core"}`, nil)
		code, _, stderr := execute(t, root)
		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, stderr, "EntryPointError")
	})

	t.Run("one failing root does not stop the others", func(t *testing.T) {
		base := t.TempDir()
		newPackage(t, filepath.Join(base, "bad"), `{"name": "bad"}`, nil)
		newPackage(t, filepath.Join(base, "good"), `{"name": "good"}`, map[string]string{"esm2015/good.js": carSource})

		code, stdout, _ := execute(t, base+"/...")
		assert.Equal(t, ExitFailure, code)
		assert.Equal(t, carDefinition+"\n", stdout)
	})
}

func TestExecuteUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"unknown flag", []string{"--bogus", "."}},
		{"bad policy", []string{"--failure-policy", "retry", "."}},
		{"bad exclude", []string{"--exclude", "[a", "."}},
		{"missing root", []string{filepath.Join(os.TempDir(), "ngreflect-does-not-exist")}},
		{"missing config file", []string{"--config", filepath.Join(os.TempDir(), "ngreflect-missing.yaml"), "."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestExecuteHelpAndVersion(t *testing.T) {
	code, stdout, _ := execute(t, "--help")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "ngreflect [flags] <package-root...>")
	assert.Contains(t, stdout, "--failure-policy")

	code, stdout, _ = execute(t, "--version")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, Version)
}
