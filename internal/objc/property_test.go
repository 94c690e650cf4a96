package objc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProperty(t *testing.T) {
	tests := []struct {
		name     string
		decl     string
		attrs    string
		wantName string
		wantType string
	}{
		{"pointer", "NSString *title", "nonatomic, strong", "title", "NSString *"},
		{"pointer glued to type", "NSString* title", "nonatomic", "title", "NSString*"},
		{"scalar", "NSInteger count", "nonatomic, assign", "count", "NSInteger"},
		{"generic array", "NSArray<NSString *> *tags", "nonatomic, copy", "tags", "NSArray<NSString *> *"},
		{"nullable qualifier", "NSString * _Nullable subtitle", "nonatomic", "subtitle", "NSString * _Nullable"},
		{"protocol typed id", "id<FooDelegate> delegate", "nonatomic, weak", "delegate", "id<FooDelegate>"},
		{"lone token", "title", "", "title", ""},
		{"surrounding whitespace", "  BOOL   enabled  ", "assign", "enabled", "BOOL"},
		{"trailing availability macro", "NSString *legacy API_DEPRECATED(\"x\", ios(8, 13))", "", "legacy", "NSString *"},
		{"trailing swift name macro", "NSUInteger total NS_SWIFT_NAME(totalCount)", "", "total", "NSUInteger"},
		{"block", "void (^completion)(NSError *error)", "nonatomic, copy", "completion", "void (^)(NSError *error)"},
		{"nullable block", "void (^ _Nullable handler)(void)", "copy", "handler", "void (^ _Nullable )(void)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProperty(tt.decl, tt.attrs)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.attrs, p.Attributes)
		})
	}
}

func TestNewProperty_NeverEmptyNameForNonEmptyDecl(t *testing.T) {
	p := NewProperty("NSString *", "")
	assert.Equal(t, "NSString *", p.Name)
	assert.Empty(t, p.Type)
}

func TestPropertyClassification(t *testing.T) {
	tests := []struct {
		name  string
		typ   string
		attrs string

		assign, enum, number, str, array, dict, arrDict, arrStr, arrNum bool
	}{
		{name: "string", typ: "NSString *", str: true},
		{name: "number", typ: "NSNumber *", number: true},
		{name: "scalar enum-like", typ: "NSInteger", attrs: "nonatomic, assign", assign: true, enum: true},
		{name: "custom enum", typ: "NSTextAlignment", enum: true},
		{name: "bool", typ: "BOOL", attrs: "assign", assign: true},
		{name: "array of strings", typ: "NSArray<NSString *> *", array: true, str: true, arrStr: true},
		{name: "array of numbers", typ: "NSArray<NSNumber *> *", array: true, number: true, arrNum: true},
		{name: "array of dictionaries", typ: "NSArray<NSDictionary *> *", array: true, dict: true, arrDict: true},
		{name: "mutable array", typ: "NSMutableArray *", array: false},
		{name: "dictionary", typ: "NSDictionary<NSString *, id> *", dict: true, str: true},
		{name: "substring false positive", typ: "MyNSArrayBox *", array: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Property{Name: "x", Type: tt.typ, Attributes: tt.attrs}
			assert.Equal(t, tt.assign, p.IsAssign(), "IsAssign")
			assert.Equal(t, tt.enum, p.IsEnum(), "IsEnum")
			assert.Equal(t, tt.number, p.IsNumber(), "IsNumber")
			assert.Equal(t, tt.str, p.IsString(), "IsString")
			assert.Equal(t, tt.array, p.IsArray(), "IsArray")
			assert.Equal(t, tt.dict, p.IsDictionary(), "IsDictionary")
			assert.Equal(t, tt.arrDict, p.IsArrayOfDictionary(), "IsArrayOfDictionary")
			assert.Equal(t, tt.arrStr, p.IsArrayOfString(), "IsArrayOfString")
			assert.Equal(t, tt.arrNum, p.IsArrayOfNumber(), "IsArrayOfNumber")
		})
	}
}

func TestArrayOfStringIsNotDictionary(t *testing.T) {
	p := NewProperty("NSArray<NSString *> *tags", "nonatomic, copy")
	assert.True(t, p.IsArrayOfString())
	assert.True(t, p.IsArray())
	assert.False(t, p.IsDictionary())
}

func TestElementType(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"NSArray<NSString *> *", "NSString"},
		{"NSArray<__kindof UIView *> *", "UIView"},
		{"NSArray *", ""},
		{"NSString *", ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, Property{Type: tt.typ}.ElementType())
		})
	}
}
