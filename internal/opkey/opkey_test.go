package opkey

import "testing"

func TestNewUpperCasesMethod(t *testing.T) {
	k := New("get", "/pet")
	if k.Method != "GET" {
		t.Errorf("expected GET, got %q", k.Method)
	}
	if k.String() != "GET@/pet" {
		t.Errorf("unexpected string form: %q", k.String())
	}
}

func TestKeyEqualityIsExact(t *testing.T) {
	a := New("GET", "/pet/")
	b := New("GET", "/pet")
	if a == b {
		t.Error("trailing slash must not be normalized")
	}
	c := New("GET", "/pet/{id}")
	d := New("GET", "/pet/{petId}")
	if c == d {
		t.Error("parameter placeholder names are part of identity")
	}
}

func TestIsMethod(t *testing.T) {
	for _, m := range []string{"get", "PUT", "Post", "delete", "patch", "options", "head", "trace"} {
		if !IsMethod(m) {
			t.Errorf("expected %q to be a method", m)
		}
	}
	for _, m := range []string{"parameters", "summary", "description", "servers", ""} {
		if IsMethod(m) {
			t.Errorf("expected %q not to be a method", m)
		}
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		loc      string
		ok       bool
		pathOnly bool
		key      Key
		path     string
	}{
		{"paths./pet.get", true, false, New("GET", "/pet"), "/pet"},
		{"paths./pet.get.responses.200", true, false, New("GET", "/pet"), "/pet"},
		{"paths./store/order/{orderId}.delete.parameters.0", true, false, New("DELETE", "/store/order/{orderId}"), "/store/order/{orderId}"},
		{"paths./pet", true, true, Key{}, "/pet"},
		{"paths./pet.parameters.0", true, true, Key{}, "/pet"},
		{"components.schemas.Pet", false, false, Key{}, ""},
		{"", false, false, Key{}, ""},
		{"paths.", false, false, Key{}, ""},
	}
	for _, c := range cases {
		got, ok := ParseLocation(c.loc)
		if ok != c.ok {
			t.Errorf("%q: expected ok=%v, got %v", c.loc, c.ok, ok)
			continue
		}
		if !ok {
			continue
		}
		if got.PathOnly != c.pathOnly {
			t.Errorf("%q: expected pathOnly=%v, got %v", c.loc, c.pathOnly, got.PathOnly)
		}
		if got.Path != c.path {
			t.Errorf("%q: expected path %q, got %q", c.loc, c.path, got.Path)
		}
		if !c.pathOnly && got.Key != c.key {
			t.Errorf("%q: expected key %v, got %v", c.loc, c.key, got.Key)
		}
	}
}

func TestSetSorted(t *testing.T) {
	s := NewSet()
	s.Add(New("POST", "/b"))
	s.Add(New("GET", "/b"))
	s.Add(New("GET", "/a"))
	got := s.Sorted()
	want := []Key{New("GET", "/a"), New("GET", "/b"), New("POST", "/b")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSetUnion(t *testing.T) {
	a := NewSet()
	a.Add(New("GET", "/x"))
	b := NewSet()
	b.Add(New("GET", "/x"))
	b.Add(New("PUT", "/y"))
	a.Union(b)
	if len(a) != 2 {
		t.Errorf("expected 2 keys after union, got %d", len(a))
	}
}
