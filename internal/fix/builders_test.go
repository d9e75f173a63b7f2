package fix

import (
	"testing"

	"dioxide/internal/diag"
	"dioxide/internal/source"
)

func TestBuildersDefaults(t *testing.T) {
	sp := source.Span{File: 1, Start: 4, End: 9}

	del := DeleteSpan("remove", sp, "hello")
	if del.Applicability != diag.FixApplicabilityAlwaysSafe || len(del.Edits) != 1 || del.Edits[0].OldText != "hello" {
		t.Fatalf("DeleteSpan = %+v", del)
	}

	ins := InsertText("insert", sp, " ")
	if ins.Edits[0].Span.End != ins.Edits[0].Span.Start {
		t.Fatalf("InsertText must produce an empty span, got %v", ins.Edits[0].Span)
	}

	adv := Advisory("split the line")
	if !adv.Advisory() || adv.Applicability != diag.FixApplicabilityManualReview {
		t.Fatalf("Advisory = %+v", adv)
	}
}

func TestBuilderOptions(t *testing.T) {
	sp := source.Span{File: 1, Start: 0, End: 3}
	f := ReplaceSpan("rename", sp, "_", "foo",
		WithID("rename-foo"),
		WithGroup("stmt-1"),
		WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
	)
	if f.ID != "rename-foo" || f.GroupKey() != "stmt-1" || f.Applicability != diag.FixApplicabilitySafeWithHeuristics {
		t.Fatalf("options not applied: %+v", f)
	}
	if DeleteSpan("d", sp, "", WithID("x")).GroupKey() != "x" {
		t.Fatal("GroupKey must fall back to the ID")
	}
}
