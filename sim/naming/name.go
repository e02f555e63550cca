package naming

import (
	"log"
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*(\[[0-9]+\])*$`)

// NameMustBeValid panics if the name is not a dot-separated list of
// capitalized CamelCase elements, each optionally followed by indices in
// square brackets. "Bench.DIMM[0]" is valid, "Bench..dimm_0" is not.
func NameMustBeValid(name string) {
	for _, token := range strings.Split(name, ".") {
		if !tokenPattern.MatchString(token) {
			log.Panicf("name %q is not valid: bad element %q", name, token)
		}
	}
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds the name of one element of a series.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
