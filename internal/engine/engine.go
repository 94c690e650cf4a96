package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dejo1307/objchdr/internal/cache"
	"github.com/dejo1307/objchdr/internal/config"
	"github.com/dejo1307/objchdr/internal/explainers"
	"github.com/dejo1307/objchdr/internal/locator"
	"github.com/dejo1307/objchdr/internal/objc"
	"github.com/dejo1307/objchdr/internal/renderers"
	"github.com/dejo1307/objchdr/internal/scanner"
)

// MetaFile is the name of the snapshot metadata artifact.
const MetaFile = "snapshot.meta.json"

// Engine orchestrates header extraction: walk -> scan -> cache -> explain -> render.
type Engine struct {
	cfg        *config.Config
	cache      *cache.Cache
	renderers  *renderers.Registry
	explainers *explainers.Registry
	locator    *locator.Locator

	mu       sync.Mutex
	snapshot *objc.Snapshot
	scanned  map[string]bool // repo roots fully scanned into the cache
}

// FileScan is the outcome of scanning one header.
type FileScan struct {
	Path   string // relative to the repository root
	Hash   string // sha256 of the content
	Result scanner.Result
}

// New creates a new Engine with the given config and lookup cache.
// A nil cache gets a fresh one. Explainers and renderers must be registered
// after creation.
func New(cfg *config.Config, c *cache.Cache) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine: nil config")
	}
	if c == nil {
		c = cache.New()
	}
	e := &Engine{
		cfg:        cfg,
		cache:      c,
		renderers:  renderers.NewRegistry(),
		explainers: explainers.NewRegistry(),
		scanned:    make(map[string]bool),
	}
	e.locator = locator.New(cfg.Locator.UseExternal, e.isIgnored)
	return e, nil
}

// RegisterRenderer adds a renderer to the engine.
func (e *Engine) RegisterRenderer(rnd renderers.Renderer) {
	e.renderers.Register(rnd)
}

// RegisterExplainer adds an explainer to the engine.
func (e *Engine) RegisterExplainer(exp explainers.Explainer) {
	e.explainers.Register(exp)
}

// Cache returns the lookup cache.
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Locator returns the type locator.
func (e *Engine) Locator() *locator.Locator {
	return e.locator
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Snapshot returns the last generated snapshot, or nil.
func (e *Engine) Snapshot() *objc.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// SetSnapshot replaces the current snapshot (used when loading a previous run).
func (e *Engine) SetSnapshot(s *objc.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = s
}

// GenerateSnapshot runs the full pipeline over every header under repoPath.
// The cache is reset and refilled from this run.
func (e *Engine) GenerateSnapshot(ctx context.Context, repoPath string) (*objc.Snapshot, error) {
	start := time.Now()

	if repoPath == "" {
		repoPath = e.cfg.Repo
	}

	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}

	// 1. Walk repository and collect headers
	files, err := e.ListHeaders(absRepo)
	if err != nil {
		return nil, fmt.Errorf("walking repo: %w", err)
	}
	log.Printf("[engine] found %d headers in %s", len(files), absRepo)

	// 2. Scan
	scans, skipped, err := e.ScanFiles(ctx, absRepo, files)
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	if len(skipped) > 0 {
		log.Printf("[engine] %d headers could not be read", len(skipped))
	}

	// 3. Refill the cache in path order so the first definition wins deterministically
	e.cache.Clear()
	snapshot := &objc.Snapshot{
		Classes: []*objc.Class{},
		Enums:   []*objc.Enum{},
	}
	var fileHashes []objc.FileHash
	for _, scan := range scans {
		e.cache.AddResult(scan.Result)
		snapshot.Classes = append(snapshot.Classes, scan.Result.Classes...)
		snapshot.Enums = append(snapshot.Enums, scan.Result.Enums...)
		fileHashes = append(fileHashes, objc.FileHash{
			Path:    scan.Path,
			Hash:    scan.Hash,
			ModTime: fileModTime(filepath.Join(absRepo, scan.Path)),
		})
	}
	e.markScanned(absRepo)
	log.Printf("[engine] extracted %d classes and %d enums", len(snapshot.Classes), len(snapshot.Enums))

	// 4. Build snapshot meta
	duration := time.Since(start)
	snapshot.Meta = objc.SnapshotMeta{
		ID:          uuid.NewString(),
		RepoPath:    absRepo,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Duration:    duration.String(),
		Renderers:   []string{},
		Explainers:  []string{},
		FileHashes:  fileHashes,
		Skipped:     skipped,
		HeaderCount: len(scans),
		ClassCount:  len(snapshot.Classes),
		EnumCount:   len(snapshot.Enums),
	}

	// 5. Run explainers
	usedExplainers, err := e.runExplainers(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("explaining: %w", err)
	}
	snapshot.Meta.Explainers = usedExplainers
	snapshot.Meta.InsightCount = len(snapshot.Insights)
	log.Printf("[engine] produced %d insights using %d explainers", len(snapshot.Insights), len(usedExplainers))

	// 6. Run renderers
	usedRenderers, err := e.runRenderers(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}
	snapshot.Meta.Renderers = usedRenderers
	log.Printf("[engine] produced %d artifacts using %d renderers", len(snapshot.Artifacts), len(usedRenderers))

	e.SetSnapshot(snapshot)
	log.Printf("[engine] snapshot generated in %s", duration)
	return snapshot, nil
}

// ListHeaders returns the .h files under repoPath, relative to it and in
// lexical order, applying the configured ignore patterns.
func (e *Engine) ListHeaders(repoPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}

		// Skip ignored paths
		if relPath != "." && e.isIgnored(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() && strings.HasSuffix(relPath, ".h") {
			files = append(files, relPath)
		}
		return nil
	})
	return files, err
}

// ScanFiles reads and scans the given headers with a bounded worker pool.
// Results come back in the order of files. A header that cannot be read is
// left out of the scans and reported in skipped, so an unreadable file is
// never mistaken for one that declares nothing. Only cancellation aborts
// the batch.
func (e *Engine) ScanFiles(ctx context.Context, repoPath string, files []string) (scans []FileScan, skipped []objc.SkippedFile, err error) {
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]*FileScan, len(files))
	readErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, relFile := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Join(repoPath, relFile))
			if err != nil {
				log.Printf("[engine] error reading %s: %v", relFile, err)
				readErrs[i] = err
				return nil
			}

			h := sha256.Sum256(data)
			results[i] = &FileScan{
				Path:   relFile,
				Hash:   hex.EncodeToString(h[:]),
				Result: scanner.Scan(relFile, string(data)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	scans = make([]FileScan, 0, len(files))
	skipped = []objc.SkippedFile{}
	for i, r := range results {
		switch {
		case r != nil:
			scans = append(scans, *r)
		case readErrs[i] != nil:
			skipped = append(skipped, objc.SkippedFile{Path: files[i], Error: readErrs[i].Error()})
		}
	}
	return scans, skipped, nil
}

// FindClass resolves a class by name: cache first, then the header the
// locator points at, then a scan of every header under repoPath.
// A class declared nowhere is (nil, false, nil).
func (e *Engine) FindClass(ctx context.Context, repoPath, name string) (*objc.Class, bool, error) {
	if cls, ok := e.cache.Class(name); ok {
		return cls, true, nil
	}
	err := e.resolve(ctx, repoPath, name, func() bool {
		_, ok := e.cache.Class(name)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	cls, ok := e.cache.Class(name)
	return cls, ok, nil
}

// FindEnum resolves an enum by name the same way FindClass does.
func (e *Engine) FindEnum(ctx context.Context, repoPath, name string) (*objc.Enum, bool, error) {
	if en, ok := e.cache.Enum(name); ok {
		return en, true, nil
	}
	err := e.resolve(ctx, repoPath, name, func() bool {
		_, ok := e.cache.Enum(name)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	en, ok := e.cache.Enum(name)
	return en, ok, nil
}

// resolve fills the cache until found reports true or every header has been scanned.
func (e *Engine) resolve(ctx context.Context, repoPath, name string, found func() bool) error {
	if repoPath == "" {
		repoPath = e.cfg.Repo
	}
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return fmt.Errorf("resolving repo path: %w", err)
	}

	path, ok, err := e.locator.FindTypeFile(ctx, absRepo, name)
	if err != nil {
		return fmt.Errorf("locating %s: %w", name, err)
	}
	if ok {
		if err := e.scanInto(absRepo, path); err != nil {
			return err
		}
		if found() {
			return nil
		}
	}

	if e.isScanned(absRepo) {
		return nil
	}

	log.Printf("[engine] %s not located directly, scanning all headers in %s", name, absRepo)
	files, err := e.ListHeaders(absRepo)
	if err != nil {
		return fmt.Errorf("walking repo: %w", err)
	}
	scans, _, err := e.ScanFiles(ctx, absRepo, files)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	for _, scan := range scans {
		e.cache.AddResult(scan.Result)
	}
	e.markScanned(absRepo)
	return nil
}

// scanInto scans a single header and adds its declarations to the cache.
func (e *Engine) scanInto(absRepo, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rel := path
	if r, err := filepath.Rel(absRepo, path); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	res, err := scanner.ScanReader(rel, f)
	if err != nil {
		return err
	}
	e.cache.AddResult(res)
	return nil
}

func (e *Engine) markScanned(absRepo string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scanned[absRepo] = true
}

func (e *Engine) isScanned(absRepo string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scanned[absRepo]
}

// isIgnored checks whether a path matches any ignore pattern.
func (e *Engine) isIgnored(relPath string, isDir bool) bool {
	// Normalize to forward slashes for matching
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range e.cfg.Ignore {
		// Handle directory-only patterns
		if strings.HasSuffix(pattern, "/**") {
			dirPrefix := strings.TrimSuffix(pattern, "/**")
			if relPath == dirPrefix || strings.HasPrefix(relPath, dirPrefix+"/") {
				return true
			}
		}

		// Standard glob match
		matched, err := filepath.Match(pattern, relPath)
		if err == nil && matched {
			return true
		}

		// Also try matching just the filename for patterns like **/*.h
		if strings.HasPrefix(pattern, "**/") {
			subPattern := strings.TrimPrefix(pattern, "**/")
			matched, err = filepath.Match(subPattern, filepath.Base(relPath))
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// runExplainers runs all enabled explainers. A failing explainer is logged and skipped.
func (e *Engine) runExplainers(ctx context.Context, snapshot *objc.Snapshot) ([]string, error) {
	usedNames := []string{}
	snapshot.Insights = []objc.Insight{}

	for _, exp := range e.explainers.Enabled(e.cfg.IsExplainerEnabled) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Printf("[engine] running explainer: %s", exp.Name())
		insights, err := exp.Explain(ctx, snapshot)
		if err != nil {
			log.Printf("[engine] explainer %s error: %v", exp.Name(), err)
			continue
		}

		snapshot.Insights = append(snapshot.Insights, insights...)
		usedNames = append(usedNames, exp.Name())
	}

	return usedNames, nil
}

// runRenderers runs all enabled renderers. A failing renderer is logged and skipped.
func (e *Engine) runRenderers(ctx context.Context, snapshot *objc.Snapshot) ([]string, error) {
	usedNames := []string{}

	for _, rnd := range e.renderers.Enabled(e.cfg.IsRendererEnabled) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Printf("[engine] running renderer: %s", rnd.Name())
		artifacts, err := rnd.Render(ctx, snapshot)
		if err != nil {
			log.Printf("[engine] renderer %s error: %v", rnd.Name(), err)
			continue
		}

		snapshot.Artifacts = append(snapshot.Artifacts, artifacts...)
		usedNames = append(usedNames, rnd.Name())
	}

	return usedNames, nil
}

// WriteArtifacts writes all snapshot artifacts plus snapshot.meta.json to the
// output directory under repoPath.
func (e *Engine) WriteArtifacts(repoPath string) error {
	snapshot := e.Snapshot()
	if snapshot == nil {
		return fmt.Errorf("no snapshot generated")
	}

	outDir := e.OutputDir(repoPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, a := range snapshot.Artifacts {
		path := filepath.Join(outDir, a.Name)
		if err := os.WriteFile(path, a.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", a.Name, err)
		}
		log.Printf("[engine] wrote %s (%d bytes)", path, len(a.Content))
	}

	metaJSON, err := json.MarshalIndent(snapshot.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	metaPath := filepath.Join(outDir, MetaFile)
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetaFile, err)
	}
	log.Printf("[engine] wrote %s (%d bytes)", metaPath, len(metaJSON))

	return nil
}

// OutputDir returns the artifact directory for repoPath.
func (e *Engine) OutputDir(repoPath string) string {
	if filepath.IsAbs(e.cfg.Output.Dir) {
		return e.cfg.Output.Dir
	}
	return filepath.Join(repoPath, e.cfg.Output.Dir)
}

// GetArtifact returns the content of a named artifact or of snapshot.meta.json.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	snapshot := e.Snapshot()
	if snapshot == nil {
		return nil, fmt.Errorf("no snapshot generated")
	}

	if name == MetaFile {
		return json.MarshalIndent(snapshot.Meta, "", "  ")
	}
	for _, a := range snapshot.Artifacts {
		if a.Name == name {
			return a.Content, nil
		}
	}
	return nil, fmt.Errorf("artifact %q not found", name)
}

// LoadSnapshot reads the classes and enums written by a previous run from
// the output directory under repoPath into the cache and makes them the
// current snapshot. Insights and artifacts are recomputed in memory from the
// loaded data.
func (e *Engine) LoadSnapshot(ctx context.Context, repoPath string) error {
	outDir := e.OutputDir(repoPath)

	var classes []*objc.Class
	if err := readJSON(filepath.Join(outDir, e.cfg.Output.ClassesFile), &classes); err != nil {
		return err
	}
	var enums []*objc.Enum
	if err := readJSON(filepath.Join(outDir, e.cfg.Output.EnumsFile), &enums); err != nil {
		return err
	}

	snapshot := &objc.Snapshot{
		Meta:    objc.SnapshotMeta{RepoPath: repoPath},
		Classes: classes,
		Enums:   enums,
	}
	if data, err := os.ReadFile(filepath.Join(outDir, MetaFile)); err == nil {
		if err := json.Unmarshal(data, &snapshot.Meta); err != nil {
			log.Printf("[engine] ignoring unreadable %s: %v", MetaFile, err)
		}
	}

	if _, err := e.runExplainers(ctx, snapshot); err != nil {
		return err
	}
	snapshot.Meta.InsightCount = len(snapshot.Insights)
	if _, err := e.runRenderers(ctx, snapshot); err != nil {
		return err
	}

	e.cache.Clear()
	e.cache.AddResult(scanner.Result{Classes: classes, Enums: enums})
	e.SetSnapshot(snapshot)
	log.Printf("[engine] loaded %d classes and %d enums from %s", len(classes), len(enums), outDir)
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// fileModTime returns the modification time of a file as an RFC3339 string.
func fileModTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}
