package dag

import (
	"sort"

	"dioxide/internal/project"
)

// PackageID is the graph node id; it matches project.PackageID.
type PackageID = project.PackageID

type Index struct {
	NameToID map[string]PackageID
	IDToName []string
}

// собрать уникальные пути пакетов, sort.Strings, раздать ID по порядку
func BuildIndex(pkgs []*project.Package) Index {
	uniq := make(map[string]struct{}, len(pkgs))
	for _, p := range pkgs {
		if p.ImportPath != "" {
			uniq[p.ImportPath] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nameToID := make(map[string]PackageID, len(paths))
	for i, path := range paths {
		nameToID[path] = PackageID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: paths,
	}
}

// Name returns the import path of id.
func (idx Index) Name(id PackageID) string {
	if id < 0 || int(id) >= len(idx.IDToName) {
		return ""
	}
	return idx.IDToName[id]
}
