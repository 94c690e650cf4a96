// Package jsonout renders the extracted classes, enums and insights as JSON
// documents.
package jsonout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dejo1307/objchdr/internal/objc"
)

// Renderer writes one JSON array each of classes, enums and insights.
type Renderer struct {
	classesFile  string
	enumsFile    string
	insightsFile string
}

// New creates a JSON renderer with the given artifact names.
func New(classesFile, enumsFile, insightsFile string) *Renderer {
	return &Renderer{classesFile: classesFile, enumsFile: enumsFile, insightsFile: insightsFile}
}

func (r *Renderer) Name() string {
	return "json"
}

// Render marshals the snapshot's classes, enums and insights. Empty lists are
// written as [] rather than null.
func (r *Renderer) Render(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Artifact, error) {
	classes := snapshot.Classes
	if classes == nil {
		classes = []*objc.Class{}
	}
	enums := snapshot.Enums
	if enums == nil {
		enums = []*objc.Enum{}
	}

	insights := snapshot.Insights
	if insights == nil {
		insights = []objc.Insight{}
	}

	classesJSON, err := json.MarshalIndent(classes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling classes: %w", err)
	}
	enumsJSON, err := json.MarshalIndent(enums, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling enums: %w", err)
	}
	insightsJSON, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling insights: %w", err)
	}

	return []objc.Artifact{
		{Name: r.classesFile, Content: classesJSON, Type: "application/json"},
		{Name: r.enumsFile, Content: enumsJSON, Type: "application/json"},
		{Name: r.insightsFile, Content: insightsJSON, Type: "application/json"},
	}, nil
}
