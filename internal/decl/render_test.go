package decl

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleFactory() Declaration {
	return Declaration{
		Kind:       KindMethod,
		Static:     true,
		Name:       "exampleWithName:data:attribute:",
		ReturnType: "instancetype",
		Parameters: []Parameter{
			{Label: "exampleWithName", Type: "NSString *", Nullability: "nullable", Name: "name"},
			{Label: "data", Type: "NSData *", Name: "data"},
			{Label: "attribute", Type: "NSString *", Nullability: "nullable", Name: "attribute"},
		},
	}
}

func TestSingleLine(t *testing.T) {
	tests := []struct {
		name string
		decl Declaration
		want string
	}{
		{
			name: "method without parameters",
			decl: Declaration{Kind: KindMethod, Name: "load", ReturnType: "void"},
			want: "- (void)load;",
		},
		{
			name: "class method with parameters",
			decl: exampleFactory(),
			want: "+ (instancetype)exampleWithName:(nullable NSString *)name data:(NSData *)data attribute:(nullable NSString *)attribute;",
		},
		{
			name: "object property",
			decl: Declaration{Kind: KindProperty, Name: "name", Type: "NSString *", Attributes: []string{"nullable", "nonatomic", "strong"}},
			want: "@property (nullable, nonatomic, strong) NSString *name;",
		},
		{
			name: "scalar property",
			decl: Declaration{Kind: KindProperty, Name: "local", Type: "BOOL", Attributes: []string{"nonatomic"}},
			want: "@property (nonatomic) BOOL local;",
		},
		{
			name: "property without attributes",
			decl: Declaration{Kind: KindProperty, Name: "count", Type: "NSInteger"},
			want: "@property NSInteger count;",
		},
		{
			name: "enum case",
			decl: Declaration{Kind: KindEnumCase, Name: "PROrderLayoutTypePhone"},
			want: "PROrderLayoutTypePhone,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decl.SingleLine())
			assert.Equal(t, len(tt.want), tt.decl.LineLength())
		})
	}
}

func TestSplitLayout_Method(t *testing.T) {
	d := exampleFactory()

	layout, ok := d.SplitLayout()
	require.True(t, ok)

	assert.Equal(t, 31, layout.Anchor)
	assert.True(t, layout.Aligned)
	assert.Equal(t, []string{
		"+ (instancetype)exampleWithName:(nullable NSString *)name",
		strings.Repeat(" ", 27) + "data:(NSData *)data",
		strings.Repeat(" ", 22) + "attribute:(nullable NSString *)attribute;",
	}, layout.Lines)
	assert.Equal(t, len(layout.Lines[2]), layout.Longest())
}

func TestLineLength_CountsCharacters(t *testing.T) {
	d := Declaration{Kind: KindProperty, Name: "título", Type: "NSString *", Attributes: []string{"nonatomic", "copy"}}

	want := "@property (nonatomic, copy) NSString *título;"
	assert.Equal(t, want, d.SingleLine())
	assert.Equal(t, utf8.RuneCountInString(want), d.LineLength())
	assert.Less(t, d.LineLength(), len(want))

	layout, ok := d.SplitLayout()
	require.True(t, ok)
	assert.Equal(t, utf8.RuneCountInString(layout.Lines[1]), layout.Longest())
}

func TestSplitLayout_LabelLongerThanAnchor(t *testing.T) {
	d := exampleFactory()
	d.Parameters[1].Label = "reallyLongAndComplexMoreThanMy13InchDisplayData"

	layout, ok := d.SplitLayout()
	require.True(t, ok)
	assert.False(t, layout.Aligned)
}

func TestSplitLayout_Property(t *testing.T) {
	d := Declaration{Kind: KindProperty, Name: "name", Type: "NSString *", Attributes: []string{"nullable", "nonatomic", "strong"}}

	layout, ok := d.SplitLayout()
	require.True(t, ok)

	pad := strings.Repeat(" ", 11)
	assert.Equal(t, []string{
		"@property (nullable,",
		pad + "nonatomic,",
		pad + "strong) NSString *name;",
	}, layout.Lines)
	assert.Equal(t, 11, layout.Anchor)
}

func TestSplitLayout_NotSplittable(t *testing.T) {
	single := Declaration{Kind: KindMethod, Name: "load", ReturnType: "void"}
	_, ok := single.SplitLayout()
	assert.False(t, ok)

	enumCase := Declaration{Kind: KindEnumCase, Name: "PROrderLayoutTypePhone"}
	_, ok = enumCase.SplitLayout()
	assert.False(t, ok)
}

func TestWrittenAnchorsAndPieces(t *testing.T) {
	d := exampleFactory()
	layout, _ := d.SplitLayout()
	d.Lines = layout.Lines

	assert.Equal(t, []int{31, 31, 31}, d.WrittenAnchors())
	assert.Equal(t, []int{1, 1, 1}, d.PiecesPerLine())

	d.Lines = []string{
		"+ (instancetype)exampleWithName:(nullable NSString *)name data:(NSData *)data",
		"                      attribute:(nullable NSString *)attribute;",
	}
	assert.Equal(t, []int{2, 1}, d.PiecesPerLine())

	p := Declaration{Kind: KindProperty, Lines: []string{
		"@property (nullable, nonatomic,",
		"           strong) NSString *name;",
	}}
	assert.Equal(t, []int{11, 11}, p.WrittenAnchors())
	assert.Equal(t, []int{2, 1}, p.PiecesPerLine())
}

func TestIsClassLevel(t *testing.T) {
	assert.True(t, (&Declaration{Kind: KindMethod, Static: true}).IsClassLevel())
	assert.False(t, (&Declaration{Kind: KindMethod}).IsClassLevel())
	assert.True(t, (&Declaration{Kind: KindProperty, Attributes: []string{"class", "nonatomic"}}).IsClassLevel())
	assert.False(t, (&Declaration{Kind: KindProperty, Attributes: []string{"nonatomic"}}).IsClassLevel())
}

func TestInterfaceClone(t *testing.T) {
	orig := Interface{Name: "CGExample", Declarations: []Declaration{exampleFactory()}}
	cp := orig.Clone()
	cp.Declarations[0].Parameters[0].Label = "changed"

	assert.Equal(t, "exampleWithName", orig.Declarations[0].Parameters[0].Label)
}
