// Package paths fixes the on-disk layout of a baseline project.
package paths

import "path/filepath"

// Layout is rooted at a project directory:
//
//	data/{raw,cache,processed,external}
//	reports/
//	models/runs/<run_id>/
//	models/registry/latest.txt
type Layout struct {
	Root      string
	Raw       string
	Cache     string
	Processed string
	External  string
	Reports   string
	Runs      string
	Registry  string
}

func FromRoot(root string) Layout {
	if root == "" {
		root = "."
	}
	data := filepath.Join(root, "data")
	models := filepath.Join(root, "models")
	return Layout{
		Root:      root,
		Raw:       filepath.Join(data, "raw"),
		Cache:     filepath.Join(data, "cache"),
		Processed: filepath.Join(data, "processed"),
		External:  filepath.Join(data, "external"),
		Reports:   filepath.Join(root, "reports"),
		Runs:      filepath.Join(models, "runs"),
		Registry:  filepath.Join(models, "registry"),
	}
}

// DataDirs lists the data directories in creation order.
func (l Layout) DataDirs() []string {
	return []string{l.Raw, l.Cache, l.Processed, l.External, l.Reports}
}
