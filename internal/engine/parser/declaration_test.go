package parser

import (
	"reflect"
	"testing"
)

func collectDeclarations(t *testing.T, source, moduleQName string) []Declaration {
	t.Helper()
	tree, src := parseSource(t, source)
	visitor := NewDeclarationVisitor()
	visitor.Visit(tree.RootNode(), src)
	return visitor.Declarations(moduleQName)
}

func declByQName(decls []Declaration, qname string) *Declaration {
	for i := range decls {
		if decls[i].QName == qname {
			return &decls[i]
		}
	}
	return nil
}

func TestDeclarationsModuleLevel(t *testing.T) {
	source := `def load():
    pass

def save():
    pass
`
	decls := collectDeclarations(t, source, "app.io")
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}

	load := declByQName(decls, "app.io.load")
	if load == nil {
		t.Fatal("app.io.load not found")
	}
	if load.Kind != KindFunction {
		t.Errorf("load kind = %v, want function", load.Kind)
	}
	if load.OwnerClass != "" {
		t.Errorf("load owner = %q, want empty", load.OwnerClass)
	}
	if load.Position.Line != 1 {
		t.Errorf("load line = %d, want 1", load.Position.Line)
	}

	save := declByQName(decls, "app.io.save")
	if save == nil {
		t.Fatal("app.io.save not found")
	}
	if save.Position.Line != 4 {
		t.Errorf("save line = %d, want 4", save.Position.Line)
	}
}

func TestMethodClassification(t *testing.T) {
	source := `class Store:
    def get(self, key):
        pass

    def set(self, key, value):
        pass

def standalone():
    pass
`
	decls := collectDeclarations(t, source, "app.store")

	cls := declByQName(decls, "app.store.Store")
	if cls == nil {
		t.Fatal("class declaration not found")
	}
	if cls.Kind != KindClass {
		t.Errorf("Store kind = %v, want class", cls.Kind)
	}

	get := declByQName(decls, "app.store.Store.get")
	if get == nil {
		t.Fatal("method qname not built under the class")
	}
	if get.OwnerClass != "app.store.Store" {
		t.Errorf("get owner = %q, want app.store.Store", get.OwnerClass)
	}

	standalone := declByQName(decls, "app.store.standalone")
	if standalone == nil {
		t.Fatal("standalone function not found")
	}
	if standalone.OwnerClass != "" {
		t.Errorf("standalone owner = %q, want empty", standalone.OwnerClass)
	}
}

func TestInnermostClassWins(t *testing.T) {
	source := `class Outer:
    class Inner:
        def method(self):
            pass
`
	decls := collectDeclarations(t, source, "m")

	method := declByQName(decls, "m.Inner.method")
	if method == nil {
		t.Fatalf("method not attributed to the innermost class: %+v", decls)
	}
	if method.OwnerClass != "m.Inner" {
		t.Errorf("owner = %q, want m.Inner", method.OwnerClass)
	}
}

func TestNestedFunctionsNotRecorded(t *testing.T) {
	source := `def outer():
    def inner():
        pass
    return inner
`
	decls := collectDeclarations(t, source, "m")
	if len(decls) != 1 {
		t.Fatalf("got %d declarations, want only outer: %+v", len(decls), decls)
	}
	if decls[0].QName != "m.outer" {
		t.Errorf("qname = %q, want m.outer", decls[0].QName)
	}
}

func TestDeclarationsDeterministic(t *testing.T) {
	source := `class A:
    def a(self):
        pass

class B:
    def b(self):
        pass

def c():
    pass
`
	first := collectDeclarations(t, source, "m")
	for i := 0; i < 10; i++ {
		again := collectDeclarations(t, source, "m")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("declaration order varies between runs:\n%+v\n%+v", first, again)
		}
	}
}

func TestQNamesUniqueWithinFile(t *testing.T) {
	source := `class A:
    def run(self):
        pass

class B:
    def run(self):
        pass
`
	decls := collectDeclarations(t, source, "m")
	seen := make(map[string]bool)
	for _, d := range decls {
		if seen[d.QName] {
			t.Errorf("duplicate qname %q", d.QName)
		}
		seen[d.QName] = true
	}
	if !seen["m.A.run"] || !seen["m.B.run"] {
		t.Errorf("same-named methods did not get distinct qnames: %v", seen)
	}
}
