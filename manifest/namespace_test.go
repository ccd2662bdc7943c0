package manifest

import "testing"

func TestValidateClassName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"List", false},
		{"ArrayList", false},
		{"Int32", false},
		{"", true},
		{"Any", true},
		{"Nothing", true},
		{"out", true},
		{"in", true},
		{"a.b", true},
		{"List<E>", true},
		{"A,B", true},
		{"*", true},
		{"Two Words", true},
	}

	for _, tc := range tests {
		err := ValidateClassName(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateClassName(%q) error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestQualifiedName(t *testing.T) {
	if got := QualifiedName("", "List"); got != "List" {
		t.Errorf("QualifiedName(\"\", List) = %q", got)
	}
	if got := QualifiedName("coll.mutable", "List"); got != "coll.mutable.List" {
		t.Errorf("QualifiedName = %q, want coll.mutable.List", got)
	}
}
