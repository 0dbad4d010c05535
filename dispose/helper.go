package dispose

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed helpers/*.js
var helperSources embed.FS

// namePlaceholder stands for the helper's function name in embedded sources.
const namePlaceholder = "$helper"

// Helper is a runtime function lowered code calls.
type Helper struct {
	// Name is the helper's canonical name (e.g. "usingCtx").
	Name string
	// Protocol is the call shape the helper belongs to.
	Protocol Protocol
	// Source is the JavaScript function declaration, named by the
	// placeholder $helper.
	Source string
}

var registry = make(map[string]*Helper)

// Register adds a helper to the global registry.
func Register(h *Helper) {
	registry[h.Name] = h
}

// Get returns a registered helper by name.
func Get(name string) (*Helper, bool) {
	h, ok := registry[name]
	return h, ok
}

// Names returns sorted names of all registered helpers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render returns the helper's declaration named fn.
func (h *Helper) Render(fn string) string {
	return strings.Replace(h.Source, "function "+namePlaceholder+"(", "function "+fn+"(", 1)
}

// CleanSource strips the leading comment lines and surrounding blank lines
// from an embedded helper so it can be emitted into a lowered program.
func CleanSource(src string) string {
	lines := strings.Split(src, "\n")
	start := 0
	for start < len(lines) {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			break
		}
		start++
	}
	return strings.TrimRight(strings.Join(lines[start:], "\n"), "\n ")
}

func init() {
	for _, h := range []struct {
		name     string
		protocol Protocol
	}{
		{HelperUsingCtx, ProtocolContext},
		{HelperUsing, ProtocolStack},
		{HelperDispose, ProtocolStack},
	} {
		src, err := helperSources.ReadFile("helpers/" + h.name + ".js")
		if err != nil {
			panic(fmt.Sprintf("dispose: missing helper source %s: %v", h.name, err))
		}
		Register(&Helper{Name: h.name, Protocol: h.protocol, Source: CleanSource(string(src))})
	}
}
