package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"dioxide/internal/diag"
	"dioxide/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShortDescription sarifMessage    `json:"shortDescription"`
	Properties       *sarifRuleProps `json:"properties,omitempty"`
}

type sarifRuleProps struct {
	Rule string `json:"rule,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string                 `json:"ruleId"`
	RuleIndex        int                    `json:"ruleIndex"`
	Level            string                 `json:"level"`
	Message          sarifMessage           `json:"message"`
	Locations        []sarifLocation        `json:"locations"`
	RelatedLocations []sarifRelatedLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix             `json:"fixes,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifRelatedLocation struct {
	ID               int                   `json:"id"`
	Message          sarifMessage          `json:"message"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// Sarif форматирует диагностики в SARIF (v2.1.0). Правила SARIF соответствуют
// кодам диагностик; advisory-фиксы не попадают в "fixes", у них нет правок.
func Sarif(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, meta SarifRunMeta) error {
	rules, index := sarifRules(diags, meta)
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          rules,
		}},
		Results: make([]sarifResult, 0, len(diags)),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}

	loc := func(span source.Span) sarifPhysicalLocation {
		return sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: formatPath(fs.Path(span.File), PathModeAuto, meta.BaseDir)},
			Region:           sarifRegionOf(fs, span),
		}
	}

	for i := range diags {
		d := &diags[i]
		res := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: index[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{PhysicalLocation: loc(d.Primary)}},
		}
		for j, n := range d.Notes {
			res.RelatedLocations = append(res.RelatedLocations, sarifRelatedLocation{
				ID:               j + 1,
				Message:          sarifMessage{Text: n.Msg},
				PhysicalLocation: loc(n.Span),
			})
		}
		for _, fx := range d.Fixes {
			if fx.Advisory() {
				continue
			}
			res.Fixes = append(res.Fixes, sarifFixOf(fs, fx, meta.BaseDir))
		}
		run.Results = append(run.Results, res)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifRules(diags []diag.Diagnostic, meta SarifRunMeta) ([]sarifRule, map[diag.Code]int) {
	ruleOf := make(map[diag.Code]string)
	for i := range diags {
		if _, ok := ruleOf[diags[i].Code]; !ok || ruleOf[diags[i].Code] == "" {
			ruleOf[diags[i].Code] = diags[i].Rule
		}
	}
	codes := make([]diag.Code, 0, len(ruleOf))
	for c := range ruleOf {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	rules := make([]sarifRule, 0, len(codes))
	index := make(map[diag.Code]int, len(codes))
	for i, c := range codes {
		desc := c.Title()
		r := sarifRule{ID: c.ID(), Name: c.Title()}
		if name := ruleOf[c]; name != "" {
			r.Properties = &sarifRuleProps{Rule: name}
			if doc, ok := meta.RuleDocs[name]; ok && doc != "" {
				desc = doc
			}
		}
		r.ShortDescription = sarifMessage{Text: desc}
		rules = append(rules, r)
		index[c] = i
	}
	return rules, index
}

func sarifFixOf(fs *source.FileSet, fx diag.Fix, base string) sarifFix {
	out := sarifFix{Description: sarifMessage{Text: fx.Title}}
	byFile := make(map[source.FileID]int)
	for _, e := range fx.Edits {
		idx, ok := byFile[e.Span.File]
		if !ok {
			idx = len(out.ArtifactChanges)
			byFile[e.Span.File] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifactLocation{URI: formatPath(fs.Path(e.Span.File), PathModeAuto, base)},
			})
		}
		rep := sarifReplacement{DeletedRegion: sarifRegionOf(fs, e.Span)}
		if e.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: e.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, rep)
	}
	return out
}

func sarifRegionOf(fs *source.FileSet, span source.Span) sarifRegion {
	start, end := fs.Resolve(span)
	return sarifRegion{StartLine: start.Line, StartColumn: start.Col, EndLine: end.Line, EndColumn: end.Col}
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}
