package vectorstore

import "testing"

func TestNaming(t *testing.T) {
	n := Naming{Prefix: "docs"}

	if got := n.CommonCollection(); got != "docs_common" {
		t.Errorf("CommonCollection() = %q, want docs_common", got)
	}
	if got := n.DepartmentCollection(7); got != "docs_dept_7" {
		t.Errorf("DepartmentCollection(7) = %q, want docs_dept_7", got)
	}
}
