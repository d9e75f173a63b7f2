package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/symbols"
)

// PackageClause returns the package name of tree and the clause node.
func PackageClause(tree *ast.File, content []byte) (string, ast.NodeID) {
	clause := tree.FirstChild(tree.Root, ast.KindPackageClause)
	if clause == ast.NoNode {
		return "", ast.NoNode
	}
	name := tree.FirstChild(clause, ast.KindPackageIdentifier)
	return tree.Text(content, name), clause
}

type dirKey struct {
	dir  string
	name string
}

// Build groups parsed files into packages by directory and package clause,
// assigns import paths, orders packages by import path and resolves every
// import to a package of the run or marks it external.
//
// Two non-test packages in one directory are reported as PRJ3002; the package
// with more files (then the smaller name) is kept and the other dropped.
func Build(mod *Module, root string, units []*FileUnit, r diag.Reporter) *Set {
	groups := make(map[dirKey][]*FileUnit)
	dirs := make(map[string][]string)
	for _, u := range units {
		name, _ := PackageClause(u.Tree, u.Source.Content)
		u.PackageName = name
		u.Test = strings.HasSuffix(u.Source.Path, "_test.go")
		key := dirKey{dir: filepath.Dir(filepath.FromSlash(u.Source.Path)), name: name}
		if _, seen := groups[key]; !seen {
			dirs[key.dir] = append(dirs[key.dir], name)
		}
		groups[key] = append(groups[key], u)
	}

	var pkgs []*Package
	dirNames := make([]string, 0, len(dirs))
	for d := range dirs {
		dirNames = append(dirNames, d)
	}
	sort.Strings(dirNames)

	for _, dir := range dirNames {
		names := dirs[dir]
		sort.Strings(names)
		base := ImportPath(mod, root, dir)
		primary := pickPrimary(groups, dir, names)

		for _, name := range names {
			files := groups[dirKey{dir, name}]
			sortUnits(files)
			pkg := &Package{Name: name, Dir: dir, Files: files, ImportPath: base}
			switch {
			case name == primary:
			case strings.HasSuffix(name, "_test") && strings.TrimSuffix(name, "_test") == primary:
				pkg.XTest = true
				pkg.ImportPath = base + "_test"
			default:
				reportConflict(r, files, name, primary, dir)
				continue
			}
			pkgs = append(pkgs, pkg)
		}
	}

	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].ImportPath < pkgs[j].ImportPath })
	set := &Set{Module: mod, Packages: pkgs, byPath: make(map[string]PackageID, len(pkgs))}
	for i, p := range pkgs {
		p.ID = PackageID(i)
		set.byPath[p.ImportPath] = p.ID
	}
	for _, p := range pkgs {
		p.Imports = collectImports(set, p)
	}
	return set
}

// pickPrimary chooses the non-test package of dir: most files, then smallest name.
func pickPrimary(groups map[dirKey][]*FileUnit, dir string, names []string) string {
	primary := ""
	best := -1
	for _, name := range names {
		if strings.HasSuffix(name, "_test") {
			continue
		}
		if n := len(groups[dirKey{dir, name}]); n > best {
			primary, best = name, n
		}
	}
	if primary == "" && len(names) > 0 {
		// only external test files: treat the stripped name as the package
		return strings.TrimSuffix(names[0], "_test")
	}
	return primary
}

func reportConflict(r diag.Reporter, files []*FileUnit, name, primary, dir string) {
	for _, f := range files {
		_, clause := PackageClause(f.Tree, f.Source.Content)
		msg := fmt.Sprintf("package %s conflicts with package %s in directory %s", name, primary, filepath.ToSlash(dir))
		diag.ReportError(r, diag.PrjDuplicatePackage, f.Tree.Span(clause), msg).Emit()
	}
}

func collectImports(set *Set, p *Package) []Import {
	var out []Import
	for _, f := range p.Files {
		tree := f.Tree
		for _, decl := range tree.Node(tree.Root).Children {
			if tree.Kind(decl) != ast.KindImportDecl {
				continue
			}
			for _, spec := range symbols.SpecsOf(tree, decl, ast.KindImportSpec) {
				pathNode := tree.ChildByField(spec, ast.FieldPath)
				path, err := strconv.Unquote(tree.Text(f.Source.Content, pathNode))
				if err != nil {
					continue
				}
				imp := Import{
					Path:     path,
					Span:     tree.Span(pathNode),
					File:     f.Source.ID,
					Spec:     spec,
					Resolved: NoPackage,
					External: true,
				}
				if target, ok := set.Lookup(path); ok && !target.XTest {
					imp.Resolved = target.ID
					imp.External = false
				}
				out = append(out, imp)
			}
		}
	}
	return out
}
