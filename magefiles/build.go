//go:build mage

package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	pkg     = "./cmd/ducky"
	distDir = "dist"
)

type Build mg.Namespace

// Builds ducky for the host platform into dist/.
func (Build) Native() error {
	mg.Deps(bundleAssets)
	return sh.RunV("go", "build", "-o", filepath.Join(distDir, "ducky"+ext(runtime.GOOS)), pkg)
}

// Builds a Windows executable that starts without a console window.
func (Build) Windows() error {
	mg.Deps(bundleAssets)
	env := map[string]string{"GOOS": "windows", "GOARCH": "amd64"}
	return sh.RunWithV(env, "go", "build", "-ldflags", "-H=windowsgui", "-o", filepath.Join(distDir, "ducky.exe"), pkg)
}

// Builds the WebAssembly version into dist/web. Assets are embedded, so the
// directory can be served as is.
func (Build) Web() error {
	webDir := filepath.Join(distDir, "web")
	env := map[string]string{"GOOS": "js", "GOARCH": "wasm"}
	if err := sh.RunWithV(env, "go", "build", "-o", filepath.Join(webDir, "ducky.wasm"), pkg); err != nil {
		return err
	}
	goroot, err := sh.Output("go", "env", "GOROOT")
	if err != nil {
		return err
	}
	if err := sh.Copy(filepath.Join(webDir, "wasm_exec.js"), filepath.Join(goroot, "lib", "wasm", "wasm_exec.js")); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(webDir, "index.html"), []byte(indexHTML), 0o644)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ducky</title>
<style>html, body { margin: 0; height: 100%; background: #2b2c2f; }</style>
</head>
<body>
<script src="wasm_exec.js"></script>
<script>
const go = new Go();
WebAssembly.instantiateStreaming(fetch("ducky.wasm"), go.importObject).then((result) => {
	go.run(result.instance);
});
</script>
</body>
</html>
`

// Removes dist/.
func Clean() error {
	return sh.Rm(distDir)
}

// Runs every test.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// bundleAssets copies the asset files next to the built executables.
func bundleAssets() error {
	return filepath.WalkDir("assets", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) == ".go" {
			return err
		}
		dst := filepath.Join(distDir, path)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return sh.Copy(dst, path)
	})
}

func ext(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
