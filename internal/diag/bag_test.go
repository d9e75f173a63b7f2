package diag

import (
	"testing"

	"dioxide/internal/source"
)

func TestBagRespectsLimit(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		b.Add(NewWarning(DcUnusedVariable, source.Span{Start: uint32(i), End: uint32(i + 1)}, "unused"))
	}
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("expected 2 kept and 1 dropped, got %d and %d", b.Len(), b.Dropped())
	}

	unlimited := NewBag(0)
	for range 300 {
		unlimited.Add(Diagnostic{})
	}
	if unlimited.Len() != 300 {
		t.Fatalf("max 0 must mean unlimited, got %d", unlimited.Len())
	}
}

func TestSortUsesPathThenRulePriority(t *testing.T) {
	fs := source.NewFileSet()
	zFile := fs.AddVirtual("z.go", []byte("package z\n"))
	aFile := fs.AddVirtual("a.go", []byte("package a\n"))

	priority := map[string]int{"unused-variable": 0, "naming": 6}
	items := []Diagnostic{
		{Code: StyNamingConvention, Rule: "naming", Primary: source.Span{File: aFile, Start: 4, End: 8}},
		{Code: DcUnusedVariable, Rule: "unused-variable", Primary: source.Span{File: zFile, Start: 0, End: 1}},
		{Code: DcUnusedVariable, Rule: "unused-variable", Primary: source.Span{File: aFile, Start: 4, End: 8}},
		{Code: SynParseError, Primary: source.Span{File: aFile, Start: 0, End: 1}},
	}
	SortDiagnostics(items, fs, func(rule string) int { return priority[rule] })

	want := []Code{SynParseError, DcUnusedVariable, StyNamingConvention, DcUnusedVariable}
	for i, code := range want {
		if items[i].Code != code {
			t.Fatalf("position %d: got %s, want %s", i, items[i].Code.ID(), code.ID())
		}
	}
	if items[3].Primary.File != zFile {
		t.Fatalf("z.go must sort after a.go even though it was added first")
	}
}

func TestDedupReporterSuppressesRepeats(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 1, End: 2}
	r.Report(NewError(PrjDuplicatePackage, sp, "dup"))
	r.Report(NewError(PrjDuplicatePackage, sp, "dup"))
	ReportError(r, PrjDuplicatePackage, sp, "other").Emit()
	if bag.Len() != 2 || r.Suppressed() != 1 {
		t.Fatalf("expected 2 reported and 1 suppressed, got %d and %d", bag.Len(), r.Suppressed())
	}
}

func TestReportBuilderStampsRule(t *testing.T) {
	bag := NewBag(0)
	rep := BagReporter{Bag: bag, Rule: "line-length"}
	b := ReportInfo(rep, StyLineTooLong, source.Span{}, "line too long").
		WithFix(Fix{Title: "wrap the line"})
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("Emit must report once, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Rule != "line-length" || d.Fixable() || !d.Fixes[0].Advisory() {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestBagReporterKeepsExplicitRule(t *testing.T) {
	bag := NewBag(0)
	var seen []string
	tee := ReporterFunc(func(d Diagnostic) {
		seen = append(seen, d.Rule)
		BagReporter{Bag: bag, Rule: "dead-code"}.Report(d)
	})
	tee.Report(NewWarning(DcDeadCode, source.Span{}, "unused").WithRule("naming"))
	tee.Report(NewWarning(DcDeadCode, source.Span{}, "unused"))
	if got := bag.Items(); got[0].Rule != "naming" || got[1].Rule != "dead-code" {
		t.Fatalf("rules = %q, %q", got[0].Rule, got[1].Rule)
	}
	if len(seen) != 2 || seen[0] != "naming" || seen[1] != "" {
		t.Fatalf("seen = %q", seen)
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		SynParseError:          "SYN1001",
		SemUnresolvedReference: "SEM2001",
		PrjSelfImport:          "PRJ3003",
		EngPassInternalError:   "ENG4001",
		DcUnusedVariable:       "DC5001",
		ArcCircularDependency:  "ARC6001",
		StyLineTooLong:         "STY7001",
		IOError:                "IO8001",
		FixConflict:            "FIX9001",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("ID() = %q, want %q", got, want)
		}
	}
	if DcDeadCode.Title() != "DeadCode" {
		t.Errorf("unexpected title %q", DcDeadCode.Title())
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("pkg/a.go", []byte("package a\nvar x int\n"))
	d := NewWarning(DcUnusedVariable, source.Span{File: id, Start: 14, End: 15}, "x declared\nand not used").
		WithRule("unused-variable").
		WithNote(source.Span{File: id, Start: 0, End: 7}, "in package a")

	want := "warning DC5001 unused-variable pkg/a.go:2:5 x declared and not used\n" +
		"note DC5001 unused-variable pkg/a.go:1:1 in package a"
	if got := FormatShort([]Diagnostic{d}, fs, true); got != want {
		t.Fatalf("FormatShort:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestSeverityForms(t *testing.T) {
	cases := []struct {
		sev          Severity
		upper, lower string
	}{
		{SevInfo, "INFO", "info"},
		{SevWarning, "WARNING", "warning"},
		{SevError, "ERROR", "error"},
	}
	for _, tc := range cases {
		if got := tc.sev.String(); got != tc.upper {
			t.Errorf("String(%d) = %q, want %q", tc.sev, got, tc.upper)
		}
		if got := tc.sev.Label(); got != tc.lower {
			t.Errorf("Label(%d) = %q, want %q", tc.sev, got, tc.lower)
		}
	}
	if !(SevError > SevWarning && SevWarning > SevInfo) {
		t.Fatal("severities must be ordered")
	}
}
