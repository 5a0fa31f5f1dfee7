package document

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseYAMLMappingOrder(t *testing.T) {
	doc, err := Parse([]byte("zebra: 1\nalpha: 2\nmiddle: 3\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Kind != KindMapping {
		t.Fatalf("expected mapping, got kind %d", doc.Kind)
	}
	keys := doc.Keys()
	want := []string{"zebra", "alpha", "middle"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("key %d: expected %q, got %q", i, k, keys[i])
		}
	}
}

func TestParseJSON(t *testing.T) {
	doc, err := Parse([]byte(`{"paths": {"/pet": {"get": {"summary": "find"}}}, "count": 3}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	paths, ok := doc.Get("paths")
	if !ok || !paths.IsMapping() {
		t.Fatal("expected paths mapping")
	}
	count, ok := doc.Get("count")
	if !ok {
		t.Fatal("expected count key")
	}
	if v, _ := count.Value.(int64); v != 3 {
		t.Errorf("expected int64 3, got %v (%T)", count.Value, count.Value)
	}
}

func TestParseScalarTypes(t *testing.T) {
	doc, err := Parse([]byte("s: hello\ni: 42\nf: 1.5\nb: true\nn: null\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cases := []struct {
		key  string
		want interface{}
	}{
		{"s", "hello"},
		{"i", int64(42)},
		{"f", 1.5},
		{"b", true},
		{"n", nil},
	}
	for _, c := range cases {
		v, ok := doc.Get(c.key)
		if !ok {
			t.Fatalf("missing key %q", c.key)
		}
		if v.Value != c.want {
			t.Errorf("key %q: expected %v (%T), got %v (%T)", c.key, c.want, c.want, v.Value, v.Value)
		}
	}
}

func TestParseLargeInteger(t *testing.T) {
	doc, err := Parse([]byte("maximum: 18446744073709551615\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	v, ok := doc.Get("maximum")
	if !ok {
		t.Fatal("missing key maximum")
	}
	if got, _ := v.Value.(uint64); got != 18446744073709551615 {
		t.Fatalf("expected uint64 max, got %v (%T)", v.Value, v.Value)
	}
	out, err := doc.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML failed: %v", err)
	}
	if !strings.Contains(string(out), "18446744073709551615") {
		t.Errorf("expected value preserved in YAML output, got %q", out)
	}
	js, err := doc.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}
	if !strings.Contains(string(js), "18446744073709551615") {
		t.Errorf("expected value preserved in JSON output, got %q", js)
	}
}

func TestParseBOM(t *testing.T) {
	doc, err := Parse([]byte("\xEF\xBB\xBF{\"a\": 1}"))
	if err != nil {
		t.Fatalf("Parse with BOM failed: %v", err)
	}
	if !doc.Has("a") {
		t.Error("expected key a")
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("{ not: valid: json: yaml"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "document parse error") {
		t.Errorf("expected wrapped ErrParse, got %v", err)
	}
}

func TestCanonicalIgnoresKeyOrder(t *testing.T) {
	a, err := Parse([]byte("x: 1\ny:\n  b: 2\n  a: 3\n"))
	if err != nil {
		t.Fatalf("Parse a failed: %v", err)
	}
	b, err := Parse([]byte("y:\n  a: 3\n  b: 2\nx: 1\n"))
	if err != nil {
		t.Fatalf("Parse b failed: %v", err)
	}
	if !Equal(a, b) {
		t.Errorf("expected structural equality:\n%s\n%s", a.Canonical(), b.Canonical())
	}
	if a.Digest() != b.Digest() {
		t.Error("expected identical digests")
	}
}

func TestCanonicalDetectsValueChange(t *testing.T) {
	a, _ := Parse([]byte("description: old text\n"))
	b, _ := Parse([]byte("description: new text\n"))
	if Equal(a, b) {
		t.Error("expected inequality for changed description")
	}
}

func TestSequenceOrderSignificant(t *testing.T) {
	a, _ := Parse([]byte("tags: [x, y]\n"))
	b, _ := Parse([]byte("tags: [y, x]\n"))
	if Equal(a, b) {
		t.Error("sequence order must be significant")
	}
}

func TestEncodeJSONOrdered(t *testing.T) {
	doc, err := Parse([]byte("zebra: 1\nalpha:\n  - one\n  - 2\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := doc.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}
	zi := bytes.Index(out, []byte(`"zebra"`))
	ai := bytes.Index(out, []byte(`"alpha"`))
	if zi < 0 || ai < 0 || zi > ai {
		t.Errorf("expected zebra before alpha in output:\n%s", out)
	}
	// The JSON form must parse back to the same tree.
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparsing JSON output failed: %v", err)
	}
	if !Equal(doc, back) {
		t.Error("JSON round trip changed the tree")
	}
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	src := "paths:\n  /store/order/{orderId}:\n    delete:\n      summary: cancel order\n      responses:\n        \"404\":\n          $ref: '#/components/responses/NotFound'\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := doc.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML failed: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparsing YAML output failed: %v", err)
	}
	if !Equal(doc, back) {
		t.Errorf("YAML round trip changed the tree:\n%s", out)
	}
}

func TestEncodeYAMLQuotesNumericStrings(t *testing.T) {
	doc := NewMapping()
	doc.Set("version", String("1.0.0"))
	doc.Set("code", String("404"))
	out, err := doc.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML failed: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	code, _ := back.Get("code")
	if _, isString := code.Value.(string); !isString {
		t.Errorf("expected code to stay a string, got %T", code.Value)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc, _ := Parse([]byte("a:\n  b: 1\n"))
	clone := doc.Clone()
	inner, _ := clone.Get("a")
	inner.Set("b", NewScalar(int64(2)))
	orig, _ := doc.Get("a")
	v, _ := orig.Get("b")
	if got, _ := v.Value.(int64); got != 1 {
		t.Errorf("clone mutation leaked into original: %v", v.Value)
	}
}

func TestSetPreservesPosition(t *testing.T) {
	doc := NewMapping()
	doc.Set("first", NewScalar(int64(1)))
	doc.Set("second", NewScalar(int64(2)))
	doc.Set("first", NewScalar(int64(10)))
	keys := doc.Keys()
	if keys[0] != "first" || keys[1] != "second" {
		t.Errorf("Set changed ordering: %v", keys)
	}
	v, _ := doc.Get("first")
	if got, _ := v.Value.(int64); got != 10 {
		t.Errorf("Set did not replace value: %v", v.Value)
	}
}

func TestParseEmptyInput(t *testing.T) {
	doc, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse of empty input failed: %v", err)
	}
	if !doc.IsMapping() || doc.Len() != 0 {
		t.Error("expected empty mapping for empty input")
	}
}
