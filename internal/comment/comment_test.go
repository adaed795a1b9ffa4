package comment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/outline/internal/comment"
	"github.com/g5becks/outline/internal/element"
)

func TestExtractXMLSingleLineTags(t *testing.T) {
	lines := []string{
		`/// <summary>Add two numbers</summary>`,
		`/// <param name="a">first</param>`,
		`public int Add(int a,int b){}`,
	}

	doc := comment.Extract(lines, 2, comment.StyleXML)

	assert.Equal(t, "Add two numbers", doc.Summary)
	assert.Equal(t, []element.ParamDoc{{Name: "a", Description: "first"}}, doc.Params)
	assert.Empty(t, doc.Returns)
}

func TestExtractXMLMultiLineBlock(t *testing.T) {
	lines := []string{
		`    public class Calc {`,
		`        /// <summary>`,
		`        /// Divides one number`,
		`        ///   by another.`,
		`        /// </summary>`,
		`        /// <param name="x">the dividend</param>`,
		`        /// <param name="y">`,
		`        /// the divisor`,
		`        /// </param>`,
		`        /// <returns>the quotient</returns>`,
		`        [Pure]`,
		``,
		`        public double Div(double x, double y) { return x / y; }`,
	}

	doc := comment.Extract(lines, 12, comment.StyleXML)

	assert.Equal(t, "Divides one number by another.", doc.Summary)
	require.Len(t, doc.Params, 2)
	assert.Equal(t, element.ParamDoc{Name: "x", Description: "the dividend"}, doc.Params[0])
	assert.Equal(t, element.ParamDoc{Name: "y", Description: "the divisor"}, doc.Params[1])
	assert.Equal(t, "the quotient", doc.Returns)
}

func TestExtractXMLWithoutSummaryTag(t *testing.T) {
	lines := []string{
		`/// Plain doc line`,
		`/// <returns>a value</returns>`,
		`public int Value() { return 1; }`,
	}

	doc := comment.Extract(lines, 2, comment.StyleXML)

	assert.Equal(t, "Plain doc line", doc.Summary)
	assert.Equal(t, "a value", doc.Returns)
}

func TestExtractJSDoc(t *testing.T) {
	lines := []string{
		`/**`,
		` * Greets someone`,
		` * politely.`,
		` * @param {string} name - who to greet`,
		` *   by name`,
		` * @param [loud] shout it`,
		` * @example greet("x")`,
		` * @returns {string} the greeting`,
		` */`,
		`@Decorated()`,
		`export function greet(name, loud) {`,
	}

	doc := comment.Extract(lines, 10, comment.StyleJSDoc)

	assert.Equal(t, "Greets someone politely.", doc.Summary)
	require.Len(t, doc.Params, 2)
	assert.Equal(t, element.ParamDoc{Name: "name", Description: "who to greet by name"}, doc.Params[0])
	assert.Equal(t, element.ParamDoc{Name: "loud", Description: "shout it"}, doc.Params[1])
	assert.Equal(t, "the greeting", doc.Returns)
}

func TestExtractJSDocSingleLine(t *testing.T) {
	lines := []string{`/** Greet someone */`, `function greet() {}`}

	doc := comment.Extract(lines, 1, comment.StyleJSDoc)

	assert.Equal(t, "Greet someone", doc.Summary)
}

func TestExtractPlainComments(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		style comment.Style
		want  string
	}{
		{
			name:  "line comment",
			lines: []string{`// keeps count`, `private int count;`},
			style: comment.StyleXML,
			want:  "keeps count",
		},
		{
			name:  "block comment",
			lines: []string{`/* first line`, `   second line */`, `function f() {}`},
			style: comment.StyleJSDoc,
			want:  "first line second line",
		},
		{
			name:  "non-doc block in jsdoc style",
			lines: []string{`/* not a doc */`, `function f() {}`},
			style: comment.StyleJSDoc,
			want:  "not a doc",
		},
		{
			name:  "markup comment",
			lines: []string{`<!-- navigation -->`, `<nav id="main">`},
			style: comment.StyleMarkup,
			want:  "navigation",
		},
		{
			name:  "blank gap",
			lines: []string{`class A {`, `  // region: helpers`, ``, ``, ``, ``, ``, ``, `  public void M() {}`},
			style: comment.StyleXML,
			want:  "",
		},
		{
			name:  "single blank line",
			lines: []string{`// section`, ``, `public void M() {}`},
			style: comment.StyleJSDoc,
			want:  "",
		},
		{
			name:  "attribute between",
			lines: []string{`// handles get`, `[HttpGet]`, `public IActionResult Get() {}`},
			style: comment.StyleXML,
			want:  "handles get",
		},
		{
			name:  "code above",
			lines: []string{`int x = 1;`, `public void F() {}`},
			style: comment.StyleXML,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := comment.Extract(tt.lines, len(tt.lines)-1, tt.style)
			assert.Equal(t, tt.want, doc.Summary)
			assert.Empty(t, doc.Params)
			assert.Empty(t, doc.Returns)
		})
	}
}

func TestExtractOutOfRange(t *testing.T) {
	assert.True(t, comment.Extract(nil, 0, comment.StyleXML).Empty())
	assert.True(t, comment.Extract([]string{"x"}, 0, comment.StyleXML).Empty())
	assert.True(t, comment.Extract([]string{"x"}, 5, comment.StyleXML).Empty())
}

func TestExtractRespectsDocWindow(t *testing.T) {
	lines := []string{`/// <summary>too far</summary>`}
	for range comment.DocWindow + 1 {
		lines = append(lines, "")
	}
	lines = append(lines, `public void F() {}`)

	doc := comment.Extract(lines, len(lines)-1, comment.StyleXML)

	assert.Empty(t, doc.Summary)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a b c", comment.Clean("\n   /// a\n * b  \n\n// c */"))
}
