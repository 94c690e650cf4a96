package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dejo1307/objchdr/internal/config"
	"github.com/dejo1307/objchdr/internal/engine"
	"github.com/dejo1307/objchdr/internal/explainers/unresolved"
	"github.com/dejo1307/objchdr/internal/objc"
)

// Server wraps the MCP server and connects it to the extraction engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	if eng == nil || cfg == nil {
		return nil, fmt.Errorf("server requires an engine and a config")
	}
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "objchdr",
		Version: "0.1.0",
	}, nil)

	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

type snapshotResource struct {
	uri         string
	name        string
	description string
	mimeType    string
	artifact    func() string
}

func (s *Server) resources() []snapshotResource {
	return []snapshotResource{
		{
			uri:         "objc://snapshot/classes",
			name:        "Objective-C Classes",
			description: "All extracted @interface declarations with superclass and properties, as JSON",
			mimeType:    "application/json",
			artifact:    func() string { return s.cfg.Output.ClassesFile },
		},
		{
			uri:         "objc://snapshot/enums",
			name:        "Objective-C Enums",
			description: "All extracted NS_ENUM and NS_OPTIONS declarations, as JSON",
			mimeType:    "application/json",
			artifact:    func() string { return s.cfg.Output.EnumsFile },
		},
		{
			uri:         "objc://snapshot/summary",
			name:        "Header Summary",
			description: "Markdown digest of the class hierarchy, enums and properties",
			mimeType:    "text/markdown",
			artifact:    func() string { return s.cfg.Output.SummaryFile },
		},
		{
			uri:         "objc://snapshot/insights",
			name:        "Header Insights",
			description: "Superclass cycles and unresolved types found in the extracted declarations",
			mimeType:    "application/json",
			artifact:    func() string { return s.cfg.Output.InsightsFile },
		},
		{
			uri:         "objc://snapshot/meta",
			name:        "Snapshot Metadata",
			description: "Metadata about the last extraction run",
			mimeType:    "application/json",
			artifact:    func() string { return engine.MetaFile },
		},
	}
}

// registerResources adds MCP resources for snapshot artifacts.
func (s *Server) registerResources() {
	for _, r := range s.resources() {
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.description,
			MIMEType:    r.mimeType,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.eng.GetArtifact(r.artifact())
			if err != nil {
				return nil, fmt.Errorf("no snapshot available: %w (run extract_headers first)", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, Text: string(content), MIMEType: r.mimeType},
				},
			}, nil
		})
	}
}

// extractHeadersArgs are the arguments for the extract_headers tool.
type extractHeadersArgs struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Directory of Objective-C headers to scan. Defaults to the configured repo path."`
}

// lookupArgs are the arguments for the find_class, find_enum and find_type_file tools.
type lookupArgs struct {
	Name     string `json:"name" jsonschema:"Exact type name, e.g. FeedItem"`
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Directory to search when the name is not cached. Defaults to the configured repo path."`
}

// listPropertiesArgs are the arguments for the list_properties tool.
type listPropertiesArgs struct {
	Class            string `json:"class" jsonschema:"Class name whose properties to list"`
	Kind             string `json:"kind,omitempty" jsonschema:"Filter: assign, enum, number, string, array, dictionary, array_of_dictionary, array_of_string or array_of_number"`
	IncludeInherited bool   `json:"include_inherited,omitempty" jsonschema:"Also list properties of extracted superclasses, nearest first"`
	RepoPath         string `json:"repo_path,omitempty" jsonschema:"Directory to search when the class is not cached. Defaults to the configured repo path."`
}

// registerTools adds MCP tools for extraction and lookups.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "extract_headers",
		Description: "Scan every .h file under a directory, extract @interface classes and NS_ENUM/NS_OPTIONS enums, and write classes.json, enums.json, a markdown summary and Go bindings.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args extractHeadersArgs) (*mcp.CallToolResult, any, error) {
		return s.extractHeaders(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_class",
		Description: "Look up an Objective-C class by exact name. Returns its file, superclass and properties as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args lookupArgs) (*mcp.CallToolResult, any, error) {
		return s.findClass(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_enum",
		Description: "Look up an NS_ENUM or NS_OPTIONS by exact name. Returns its storage type and members as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args lookupArgs) (*mcp.CallToolResult, any, error) {
		return s.findEnum(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_type_file",
		Description: "Find the header that declares a type: <Name>.h first, then any header containing @interface <Name>.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args lookupArgs) (*mcp.CallToolResult, any, error) {
		return s.findTypeFile(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_properties",
		Description: "List a class's properties with their classification (assign, enum, number, string, array, dictionary), optionally filtered by kind.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listPropertiesArgs) (*mcp.CallToolResult, any, error) {
		return s.listProperties(ctx, args), nil, nil
	})
}

func (s *Server) repoPath(arg string) (string, error) {
	if arg == "" {
		arg = s.cfg.Repo
	}
	return filepath.Abs(arg)
}

func (s *Server) extractHeaders(ctx context.Context, args extractHeadersArgs) *mcp.CallToolResult {
	absRepo, err := s.repoPath(args.RepoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid repo path: %v", err))
	}

	snapshot, err := s.eng.GenerateSnapshot(ctx, absRepo)
	if err != nil {
		return errorResult(fmt.Sprintf("extraction failed: %v", err))
	}

	if err := s.eng.WriteArtifacts(absRepo); err != nil {
		log.Printf("[server] warning: failed to write artifacts: %v", err)
	}

	summary := fmt.Sprintf(
		"Headers extracted successfully.\n\n"+
			"- Repository: %s\n"+
			"- Headers: %d\n"+
			"- Classes: %d\n"+
			"- Enums: %d\n"+
			"- Insights: %d\n"+
			"- Artifacts: %d\n"+
			"- Duration: %s\n"+
			"- Renderers: %v\n\n"+
			"Use the objc://snapshot/summary resource to read the digest.",
		snapshot.Meta.RepoPath,
		snapshot.Meta.HeaderCount,
		snapshot.Meta.ClassCount,
		snapshot.Meta.EnumCount,
		snapshot.Meta.InsightCount,
		len(snapshot.Artifacts),
		snapshot.Meta.Duration,
		snapshot.Meta.Renderers,
	)
	if len(snapshot.Meta.Skipped) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "\n\nUnreadable headers (%d):\n", len(snapshot.Meta.Skipped))
		for _, sk := range snapshot.Meta.Skipped {
			fmt.Fprintf(&b, "- %s: %s\n", sk.Path, sk.Error)
		}
		summary += b.String()
	}
	return textResult(summary)
}

func (s *Server) findClass(ctx context.Context, args lookupArgs) *mcp.CallToolResult {
	if args.Name == "" {
		return errorResult("name is required")
	}
	cls, ok, err := s.eng.FindClass(ctx, args.RepoPath, args.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("lookup failed: %v", err))
	}
	if !ok {
		return errorResult(fmt.Sprintf("No class named %q", args.Name))
	}
	return jsonResult(cls)
}

func (s *Server) findEnum(ctx context.Context, args lookupArgs) *mcp.CallToolResult {
	if args.Name == "" {
		return errorResult("name is required")
	}
	en, ok, err := s.eng.FindEnum(ctx, args.RepoPath, args.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("lookup failed: %v", err))
	}
	if !ok {
		return errorResult(fmt.Sprintf("No enum named %q", args.Name))
	}
	return jsonResult(en)
}

func (s *Server) findTypeFile(ctx context.Context, args lookupArgs) *mcp.CallToolResult {
	if args.Name == "" {
		return errorResult("name is required")
	}
	absRepo, err := s.repoPath(args.RepoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid repo path: %v", err))
	}
	path, ok, err := s.eng.Locator().FindTypeFile(ctx, absRepo, args.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("search failed: %v", err))
	}
	if !ok {
		return errorResult(fmt.Sprintf("No header declares %q", args.Name))
	}
	return textResult(path)
}

// propertyView is a property plus its derived classification.
type propertyView struct {
	objc.Property
	DeclaredIn string   `json:"declared_in"`
	Kinds      []string `json:"kinds,omitempty"`
}

var propertyKinds = []struct {
	name string
	test func(objc.Property) bool
}{
	{"assign", objc.Property.IsAssign},
	{"enum", objc.Property.IsEnum},
	{"number", objc.Property.IsNumber},
	{"string", objc.Property.IsString},
	{"array", objc.Property.IsArray},
	{"dictionary", objc.Property.IsDictionary},
	{"array_of_dictionary", objc.Property.IsArrayOfDictionary},
	{"array_of_string", objc.Property.IsArrayOfString},
	{"array_of_number", objc.Property.IsArrayOfNumber},
}

func classify(p objc.Property) []string {
	var kinds []string
	for _, k := range propertyKinds {
		if k.test(p) {
			kinds = append(kinds, k.name)
		}
	}
	return kinds
}

func (s *Server) listProperties(ctx context.Context, args listPropertiesArgs) *mcp.CallToolResult {
	if args.Class == "" {
		return errorResult("class is required")
	}
	if args.Kind != "" && !knownKind(args.Kind) {
		return errorResult(fmt.Sprintf("unknown kind %q", args.Kind))
	}

	cls, ok, err := s.eng.FindClass(ctx, args.RepoPath, args.Class)
	if err != nil {
		return errorResult(fmt.Sprintf("lookup failed: %v", err))
	}
	if !ok {
		return errorResult(fmt.Sprintf("No class named %q", args.Class))
	}

	chain := []*objc.Class{cls}
	if args.IncludeInherited {
		seen := map[string]bool{cls.Name: true}
		for cur := cls; cur.SuperclassName != "" && !seen[cur.SuperclassName]; {
			seen[cur.SuperclassName] = true
			if unresolved.IsSDKType(cur.SuperclassName) {
				// Framework roots are only known if already extracted; no header lookup.
				parent, ok := s.eng.Cache().Class(cur.SuperclassName)
				if !ok {
					break
				}
				chain = append(chain, parent)
				cur = parent
				continue
			}
			parent, ok, err := s.eng.FindClass(ctx, args.RepoPath, cur.SuperclassName)
			if err != nil {
				return errorResult(fmt.Sprintf("lookup failed: %v", err))
			}
			if !ok {
				break
			}
			chain = append(chain, parent)
			cur = parent
		}
	}

	views := []propertyView{}
	for _, c := range chain {
		for _, p := range c.Properties {
			kinds := classify(p)
			if args.Kind != "" && !slices.Contains(kinds, args.Kind) {
				continue
			}
			views = append(views, propertyView{Property: p, DeclaredIn: c.Name, Kinds: kinds})
		}
	}
	return jsonResult(views)
}

func knownKind(kind string) bool {
	for _, k := range propertyKinds {
		if k.name == kind {
			return true
		}
	}
	return false
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return textResult(string(data))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
