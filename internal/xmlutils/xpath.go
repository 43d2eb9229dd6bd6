// Package xmlutils wraps xmlpath for extracting values from statement
// fragments.
package xmlutils

import (
	"fmt"
	"strings"

	"fjacquet/payrecon/internal/textutils"

	"gopkg.in/xmlpath.v2"
)

// ParseFragment parses a standalone XML fragment such as a single entry
// block cut out of a larger document.
func ParseFragment(fragment string) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML fragment: %w", err)
	}
	return root, nil
}

// ExtractFromXML returns every value matched by xpath under root.
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath: %w", err)
	}
	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, iter.Node().String())
	}
	return values, nil
}

// FirstValue returns the first non-empty, whitespace-cleaned value found by
// trying paths in order.
func FirstValue(root *xmlpath.Node, paths ...*xmlpath.Path) string {
	for _, p := range paths {
		iter := p.Iter(root)
		for iter.Next() {
			if v := textutils.CleanText(iter.Node().String()); v != "" {
				return v
			}
		}
	}
	return ""
}
