package gobind

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/objchdr/internal/objc"
	"github.com/dejo1307/objchdr/internal/scanner"
)

const feedHeader = `
typedef NS_ENUM(NSInteger, FeedKind) {
    FeedKindText,
    FeedKindImage,
    FeedKindVideo,
};

typedef NS_OPTIONS(NSUInteger, FeedFlags) {
    FeedFlagsNone = 0,
    FeedFlagsPinned = 1 << 0,
    FeedFlagsMuted = 1 << 1,
    FeedFlagsLegacy,
    FeedFlagsAll = FeedFlagsPinned | FeedFlagsMuted
};

@interface BaseModel : NSObject
@property (nonatomic, copy) NSString *identifier;
@end

@interface FeedItem : BaseModel
@property (nonatomic, copy) NSString *title;
@property (nonatomic, strong) NSNumber *score;
@property (nonatomic, assign) BOOL read;
@property (nonatomic, assign) NSInteger position;
@property (nonatomic, assign) CGFloat ratio;
@property (nonatomic, assign) FeedKind kind;
@property (nonatomic, strong) NSArray<NSString *> *tags;
@property (nonatomic, strong) NSArray<FeedItem *> *children;
@property (nonatomic, strong) NSDictionary *extra;
@property (nonatomic, strong) BaseModel *parent;
@property (nonatomic, strong) UIView *view;
@property (nonatomic, copy) void (^onTap)(void);
@end
`

func generate(t *testing.T, header string) (string, *ast.File) {
	t.Helper()
	res := scanner.Scan("Feed.h", header)
	r := New("models", "bindings.go")
	artifacts, err := r.Render(context.Background(), &objc.Snapshot{Classes: res.Classes, Enums: res.Enums})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "bindings.go", artifacts[0].Name)

	src := string(artifacts[0].Content)
	file, err := parser.ParseFile(token.NewFileSet(), "bindings.go", src, parser.ParseComments)
	require.NoError(t, err, src)
	return src, file
}

// typeCheck compiles the generated source in isolation; parsing alone
// misses redeclared identifiers.
func typeCheck(t *testing.T, src string) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "bindings.go", src, 0)
	require.NoError(t, err, src)
	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("models", fset, []*ast.File{file}, nil)
	require.NoError(t, err, src)
	return pkg
}

func structFields(t *testing.T, file *ast.File, name string) map[string]string {
	t.Helper()
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if ts.Name.Name != name {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			require.True(t, ok, "%s is not a struct", name)
			fields := map[string]string{}
			for _, f := range st.Fields.List {
				typ := typeString(f.Type)
				if len(f.Names) == 0 {
					fields["embedded "+typ] = typ
					continue
				}
				fields[f.Names[0].Name] = typ
			}
			return fields
		}
	}
	t.Fatalf("struct %s not found", name)
	return nil
}

func typeString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return "*" + typeString(e.X)
	case *ast.ArrayType:
		return "[]" + typeString(e.Elt)
	case *ast.MapType:
		return "map[" + typeString(e.Key) + "]" + typeString(e.Value)
	case *ast.SelectorExpr:
		return typeString(e.X) + "." + e.Sel.Name
	}
	return "?"
}

func TestGenerate_Structs(t *testing.T) {
	src, file := generate(t, feedHeader)
	assert.Equal(t, "models", file.Name.Name)
	assert.Contains(t, src, "Code generated by objchdr. DO NOT EDIT.")

	fields := structFields(t, file, "FeedItem")
	assert.Equal(t, map[string]string{
		"embedded BaseModel": "BaseModel",
		"Title":              "string",
		"Score":              "float64",
		"Read":               "bool",
		"Position":           "int",
		"Ratio":              "float64",
		"Kind":               "FeedKind",
		"Tags":               "[]string",
		"Children":           "[]*FeedItem",
		"Extra":              "map[string]any",
		"Parent":             "*BaseModel",
		"View":               "any",
		"OnTap":              "any",
	}, fields)

	assert.Contains(t, src, "`json:\"title\"`")
	assert.Contains(t, src, "`json:\"onTap\"`")

	// NSObject is not extracted, so nothing is embedded.
	assert.Equal(t, map[string]string{"Identifier": "string"}, structFields(t, file, "BaseModel"))
}

func TestGenerate_Enums(t *testing.T) {
	src, _ := generate(t, feedHeader)

	assert.Contains(t, src, "type FeedKind int")
	assert.Contains(t, src, "FeedKindText FeedKind = iota")
	assert.Contains(t, src, "type FeedFlags uint")
	assert.Regexp(t, `FeedFlagsNone\s+FeedFlags = 0\n`, src)
	assert.Regexp(t, `FeedFlagsPinned\s+FeedFlags = 1 << 0\n`, src)
	assert.Regexp(t, `FeedFlagsMuted\s+FeedFlags = 1 << 1\n`, src)
	assert.Regexp(t, `FeedFlagsLegacy\s+FeedFlags = 3\n`, src)
	// Non-literal values fall back to positional numbering.
	assert.Regexp(t, `FeedFlagsAll\s+FeedFlags = 4\s+// = FeedFlagsPinned \| FeedFlagsMuted`, src)
}

func TestGenerate_TypeChecks(t *testing.T) {
	src, _ := generate(t, feedHeader)
	typeCheck(t, src)
}

func TestGenerate_MemberNameCollisions(t *testing.T) {
	src, _ := generate(t, `
typedef NS_ENUM(NSInteger, LegacyState) { StateIdle, StateBusy };
typedef NS_ENUM(NSInteger, NewState) { StateIdle, StateDone };
typedef NS_ENUM(NSInteger, Mode) { Account = 1, range = 2, ModeB = 3 };
typedef NS_ENUM(NSInteger, Mode2) { Mode2ModeAccount, ModeAccount };
@interface Account : NSObject
@property (nonatomic, assign) Mode mode;
@end
`)
	pkg := typeCheck(t, src)

	constValue := func(name string) string {
		t.Helper()
		c, ok := pkg.Scope().Lookup(name).(*types.Const)
		require.True(t, ok, "%s is not a constant", name)
		return c.Val().String()
	}

	// The first enum in name order keeps the plain name.
	assert.Equal(t, "0", constValue("StateIdle"))
	assert.Equal(t, "1", constValue("StateBusy"))
	assert.Equal(t, "0", constValue("NewStateStateIdle"))
	assert.Equal(t, "1", constValue("StateDone"))

	// A member named like a generated type or a Go keyword is prefixed.
	_, isType := pkg.Scope().Lookup("Account").(*types.TypeName)
	assert.True(t, isType)
	assert.Equal(t, "1", constValue("ModeAccount"))
	assert.Equal(t, "2", constValue("Moderange"))
	assert.Equal(t, "3", constValue("ModeB"))

	// Both candidates taken: the blank identifier keeps the position.
	assert.Equal(t, "0", constValue("Mode2ModeAccount"))
	assert.Regexp(t, `_\s+// ModeAccount is already declared`, src)
}

func TestScope_ConstName(t *testing.T) {
	sc := newScope()
	sc.declare("Kind")
	assert.Equal(t, "KindA", sc.constName("Kind", "KindA"))
	assert.Equal(t, "KindKindA", sc.constName("Kind", "KindA"))
	assert.Equal(t, "_", sc.constName("Kind", "KindA"))
	assert.Equal(t, "Kindtype", sc.constName("Kind", "type"))
	assert.Equal(t, "Kindstring", sc.constName("Kind", "string"))
	assert.Equal(t, "Kindtime", sc.constName("Kind", "time"))
}

func TestGenerate_SuperclassCycleNotEmbedded(t *testing.T) {
	_, file := generate(t, `
@interface A : B
@property (nonatomic) NSInteger a;
@end
@interface B : A
@property (nonatomic) NSInteger b;
@end
`)
	assert.Equal(t, map[string]string{"A": "int"}, structFields(t, file, "A"))
	assert.Equal(t, map[string]string{"B": "int"}, structFields(t, file, "B"))
}

func TestGenerate_DuplicatePropertiesKeepFirst(t *testing.T) {
	_, file := generate(t, `
@interface Dup : NSObject
@property (nonatomic, copy) NSString *name;
@property (nonatomic, strong) NSNumber *name;
@property (nonatomic, copy) NSString *_hidden;
@end
`)
	assert.Equal(t, map[string]string{"Name": "string", "Hidden": "string"}, structFields(t, file, "Dup"))
}

func TestGenerate_Empty(t *testing.T) {
	src, err := New("empty", "x.go").Generate(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package empty")
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "Title", exportName("title"))
	assert.Equal(t, "Hidden", exportName("__hidden"))
	assert.Equal(t, "X", exportName("_"))
	assert.Equal(t, "URL", exportName("URL"))
}

func TestBaseType(t *testing.T) {
	cases := []struct {
		in      string
		base    string
		pointer bool
	}{
		{"NSString *", "NSString", true},
		{"nullable NSString *", "NSString", true},
		{"NSArray<NSString *> *", "NSArray", true},
		{"id<NSCoding>", "id", false},
		{"unsigned long long", "uint64_t", false},
		{"const char *", "char", true},
		{"void (^)(void)", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		base, pointer := baseType(tc.in)
		assert.Equal(t, tc.base, base, tc.in)
		assert.Equal(t, tc.pointer, pointer, tc.in)
	}
}

func TestIntegerValue(t *testing.T) {
	v, text := integerValue("0x10")
	assert.Equal(t, int64(16), v)
	assert.Equal(t, "0x10", text)

	v, text = integerValue("(1UL << 4)")
	assert.Equal(t, int64(16), v)
	assert.Equal(t, "1 << 4", text)

	v, text = integerValue("-1")
	assert.Equal(t, int64(-1), v)
	assert.Equal(t, "-1", text)

	_, text = integerValue("NSIntegerMax")
	assert.Empty(t, text)
}
