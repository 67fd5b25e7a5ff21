package models

import (
	"fmt"
	"sort"
	"strings"
)

// Capabilities describes what a unit of work requires, or what a slot
// provides, as a set of named attributes (e.g. platform, runtime version).
//
// Example:
//
//	caps := models.Capabilities{
//	    "platform": "linux",
//	    "runtime":  "python3.12",
//	}
type Capabilities map[string]string

// Clone returns a copy of the capability set. A nil receiver yields nil.
func (c Capabilities) Clone() Capabilities {
	if c == nil {
		return nil
	}
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the capability names in sorted order.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the capabilities as "k1=v1,k2=v2" with sorted keys,
// suitable for log lines.
func (c Capabilities) String() string {
	parts := make([]string, 0, len(c))
	for _, name := range c.Names() {
		parts = append(parts, fmt.Sprintf("%s=%s", name, c[name]))
	}
	return strings.Join(parts, ",")
}
