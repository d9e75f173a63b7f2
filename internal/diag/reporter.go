package diag

import "dioxide/internal/source"

// Reporter принимает готовые диагностики от фаз и правил.
// Реализации: BagReporter, DedupReporter, ReporterFunc.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a plain function.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(fix Fix) Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}

func (d Diagnostic) WithRule(rule string) Diagnostic {
	d.Rule = rule
	return d
}

// ReportBuilder collects notes and fixes, then hands the diagnostic to its
// reporter on the first Emit.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.diag = b.diag.WithNote(sp, msg)
	}
	return b
}

// WithFix appends a fix; a fix without edits is advisory.
func (b *ReportBuilder) WithFix(fix Fix) *ReportBuilder {
	if b != nil {
		b.diag = b.diag.WithFix(fix)
	}
	return b
}

func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
}

// BagReporter пишет в *Bag и проставляет имя правила, если оно не задано.
type BagReporter struct {
	Bag  *Bag
	Rule string
}

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	if d.Rule == "" {
		d.Rule = r.Rule
	}
	r.Bag.Add(d)
}
