package report

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

// SARIFReporter generates SARIF 2.1.0 reports.
type SARIFReporter struct {
	RunID   string
	Version string
	Rules   *checker.Registry
}

func (r *SARIFReporter) Format() string { return "sarif" }

// SARIF types
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool         `json:"tool"`
	AutomationDetails sarifAutomation   `json:"automationDetails"`
	Results           []sarifResult     `json:"results"`
	Invocations       []sarifInvocation `json:"invocations,omitempty"`
	Properties        map[string]string `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	ShortDescription     sarifMessage       `json:"shortDescription"`
	DefaultConfiguration sarifConfiguration `json:"defaultConfiguration"`
	Properties           map[string]string  `json:"properties,omitempty"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifAutomation struct {
	ID string `json:"id"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	Notifications       []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	LogicalLocations []sarifLogical        `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

type sarifLogical struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

func (r *SARIFReporter) Generate(result *runner.Result) (string, error) {
	return generate(r, result)
}

func (r *SARIFReporter) Write(result *runner.Result, w io.Writer) error {
	rules, index := r.rules()

	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    "declint",
			Version: r.Version,
			Rules:   rules,
		}},
		AutomationDetails: sarifAutomation{ID: r.RunID},
		Results:           []sarifResult{},
		Properties: map[string]string{
			"ruleset":     result.RuleSet,
			"fingerprint": result.Fingerprint,
		},
	}

	invocation := sarifInvocation{ExecutionSuccessful: len(result.FailedFiles()) == 0}

	for _, file := range result.Files {
		uri := filepath.ToSlash(file.Path)
		if file.Error != nil {
			invocation.Notifications = append(invocation.Notifications, sarifNotification{
				Level:     "error",
				Message:   sarifMessage{Text: file.ErrorMessage},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifact{URI: uri}}}},
			})
			continue
		}

		for _, v := range file.Violations {
			run.Results = append(run.Results, sarifResult{
				RuleID:    v.RuleID,
				RuleIndex: index[v.RuleID],
				Level:     mapLevel(v.Severity),
				Message:   sarifMessage{Text: v.Message},
				Locations: []sarifLocation{r.location(uri, v)},
			})
		}
	}
	run.Invocations = []sarifInvocation{invocation}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// rules lists the registry's rules and their position in the list.
func (r *SARIFReporter) rules() ([]sarifRule, map[string]int) {
	registry := r.Rules
	if registry == nil {
		registry = checker.DefaultRegistry()
	}

	var rules []sarifRule
	index := make(map[string]int)
	for i, rule := range registry.All() {
		index[rule.ID()] = i
		rules = append(rules, sarifRule{
			ID:                   rule.ID(),
			Name:                 rule.ID(),
			ShortDescription:     sarifMessage{Text: rule.Description()},
			DefaultConfiguration: sarifConfiguration{Level: mapLevel(rule.DefaultSeverity())},
			Properties:           map[string]string{"category": string(rule.Category())},
		})
	}
	return rules, index
}

func (r *SARIFReporter) location(uri string, v checker.Violation) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifact{URI: uri}},
	}
	if v.Decl.Line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: v.Decl.Line}
	}
	if v.Decl.Name != "" {
		loc.LogicalLocations = []sarifLogical{{
			Name:               v.Decl.Name,
			FullyQualifiedName: subject(v),
			Kind:               "member",
		}}
	}
	return loc
}

func mapLevel(severity ruleset.Severity) string {
	switch severity {
	case ruleset.SeverityError:
		return "error"
	case ruleset.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
