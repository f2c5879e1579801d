package serialize

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/shivasurya/lineageflow/internal/lineage"
)

const sarifRuleID = "lineageflow/taint-flow"

// SARIFSerializer accumulates one SARIF result per procedure with a
// non-empty subgraph and writes the whole run on Close. Matches the
// sarif.New / run.AddRule / run.CreateResultForRule / AddLocation call
// shape used for structural-finding reports elsewhere in this codebase.
type SARIFSerializer struct {
	writer io.Writer
	report *sarif.Report
	run    *sarif.Run
	ruled  bool
}

// NewSARIFSerializer accumulates results in memory and writes a single
// SARIF 2.1.0 log to w only when Close is called.
func NewSARIFSerializer(w io.Writer) (*SARIFSerializer, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("serialize: creating sarif report: %w", err)
	}
	run := sarif.NewRunWithInformationURI("lineageflow", "https://github.com/shivasurya/lineageflow")
	return &SARIFSerializer{writer: w, report: report, run: run}, nil
}

// NewSARIFFileSerializer opens path for writing and wraps it in a
// SARIFSerializer. Callers must Close it to flush and close the file.
func NewSARIFFileSerializer(path string) (*SARIFSerializer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("serialize: creating %s: %w", path, err)
	}
	s, err := NewSARIFSerializer(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *SARIFSerializer) ensureRule() {
	if s.ruled {
		return
	}
	s.ruled = true
	s.run.AddRule(sarifRuleID).
		WithDescription("value reaches a sink through an interprocedural taint flow").
		WithName("TaintFlow").
		WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("warning"))
}

// Serialize implements lineage.GraphSerializer. A procedure with an
// empty subgraph is skipped (the Reporter never calls Serialize for one,
// but this also tolerates direct callers that do).
func (s *SARIFSerializer) Serialize(p lineage.Procedure, description string, g *lineage.Graph) error {
	if g.IsEmpty() {
		return nil
	}
	s.ensureRule()

	message := fmt.Sprintf("%s: %s", p, description)
	result := s.run.CreateResultForRule(sarifRuleID).WithMessage(sarif.NewTextMessage(message))

	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(p.String())),
		).
		WithMessage(sarif.NewTextMessage(description))
	result.AddLocation(location)

	var threadLocations []*sarif.ThreadFlowLocation
	for _, e := range g.Edges() {
		loc := sarif.NewLocation().
			WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(p.String())),
			).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("%s -> %s", e.From, e.To)))
		threadLocations = append(threadLocations, sarif.NewThreadFlowLocation().WithLocation(loc))
	}
	if len(threadLocations) > 0 {
		threadFlow := sarif.NewThreadFlow().WithLocations(threadLocations)
		codeFlow := sarif.NewCodeFlow().
			WithThreadFlows([]*sarif.ThreadFlow{threadFlow}).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("taint flow through %s", p)))
		result.WithCodeFlows([]*sarif.CodeFlow{codeFlow})
	}

	return nil
}

// Close adds the accumulated run to the report and flushes it as
// indented JSON to the underlying writer.
func (s *SARIFSerializer) Close() error {
	s.report.AddRun(s.run)
	encoder := json.NewEncoder(s.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.report); err != nil {
		return fmt.Errorf("serialize: encoding sarif report: %w", err)
	}
	if closer, ok := s.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
