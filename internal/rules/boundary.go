package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/project"
)

// Boundary enforces the configured layer rules and Go's internal/ rule.
//
// A package belongs to the first layer with a matching glob. Imports inside
// one layer are always allowed; across layers the importer's may_import
// list decides. Packages outside every layer are not constrained.
type Boundary struct{}

func (Boundary) Name() string { return "boundary" }

func (Boundary) Doc() string {
	return "imports that cross configured layer boundaries or reach into another tree's internal/"
}

func (Boundary) Check(pass *Pass) error {
	pkg := pass.Package
	importer := pkg.ImportPath
	if pkg.XTest {
		importer = strings.TrimSuffix(importer, "_test")
	}
	from := layerOf(pass.Options.Layers, importer)

	// One diagnostic per package edge: the first import site is primary and
	// later sites of the same path become notes.
	var order []string
	sites := make(map[string][]project.Import)
	for _, imp := range pkg.Imports {
		if _, seen := sites[imp.Path]; !seen {
			order = append(order, imp.Path)
		}
		sites[imp.Path] = append(sites[imp.Path], imp)
	}

	for _, path := range order {
		imp := sites[path][0]
		var b *diag.ReportBuilder
		if pass.Options.EnforceInternal && !internalAllowed(importer, imp.Path) {
			b = diag.ReportError(pass.Reporter(), diag.ArcBoundaryViolation, imp.Span,
				fmt.Sprintf("use of internal package %s not allowed from %s", imp.Path, pkg.ImportPath))
		} else {
			if imp.External || from == nil {
				continue
			}
			to := layerOf(pass.Options.Layers, imp.Path)
			if to == nil || to.Name == from.Name || slices.Contains(from.MayImport, to.Name) {
				continue
			}
			b = diag.ReportError(pass.Reporter(), diag.ArcBoundaryViolation, imp.Span,
				fmt.Sprintf("layer %s must not import layer %s: %s imports %s", from.Name, to.Name, pkg.ImportPath, imp.Path)).
				WithNote(pkg.ClauseSpan(), fmt.Sprintf("%s is in layer %s", pkg.ImportPath, from.Name))
		}
		for _, other := range sites[path][1:] {
			b = b.WithNote(other.Span, "also imported here")
		}
		b.Emit()
	}
	return nil
}

func layerOf(layers []config.Layer, path string) *config.Layer {
	for i := range layers {
		for _, pattern := range layers[i].Packages {
			if ok, _ := doublestar.Match(pattern, path); ok {
				return &layers[i]
			}
		}
	}
	return nil
}

// internalAllowed applies the internal/ rule: a path with an internal
// element may only be imported from the tree rooted at the element's parent.
func internalAllowed(importer, imported string) bool {
	var parent string
	switch {
	case imported == "internal" || strings.HasPrefix(imported, "internal/"):
		return true
	case strings.HasSuffix(imported, "/internal"):
		parent = strings.TrimSuffix(imported, "/internal")
	default:
		i := strings.LastIndex(imported, "/internal/")
		if i < 0 {
			return true
		}
		parent = imported[:i]
	}
	return importer == parent || strings.HasPrefix(importer, parent+"/")
}
