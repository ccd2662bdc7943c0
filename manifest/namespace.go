package manifest

import (
	"fmt"
	"strings"
)

// reservedNames lists names that a declared class cannot take: the
// built-in top and bottom classes and the projection keywords.
var reservedNames = map[string]bool{
	"Any":     true,
	"Nothing": true,
	"out":     true,
	"in":      true,
	"inv":     true,
	"bi":      true,
}

// ValidateClassName checks that name can be declared as a class.
func ValidateClassName(name string) error {
	if name == "" {
		return fmt.Errorf("empty class name")
	}
	if reservedNames[name] {
		return fmt.Errorf("class name %q is reserved", name)
	}
	if strings.ContainsAny(name, ".<>,* \t") {
		return fmt.Errorf("class name %q contains a reserved character", name)
	}
	return nil
}

// QualifiedName joins a namespace and a bare name.
func QualifiedName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
