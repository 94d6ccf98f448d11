// Package common provides shared types and utilities for UI features.
package common

import (
	"encoding/json"
	"net/url"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

var titleCaser = cases.Title(language.English)

// KindLabel returns a human-readable label for a structure kind.
func KindLabel(kind core.StructureKind) string {
	switch kind {
	case core.KindQuery:
		return "Query"
	case "":
		return "Table"
	default:
		return titleCaser.String(string(kind))
	}
}

// LenStr returns the length of a TreeNode slice as a formatted string like "(5)".
func LenStr(nodes []TreeNode) string {
	return "(" + strconv.Itoa(len(nodes)) + ")"
}

// StructurePath is the URL that selects a table or view.
func StructurePath(kind core.StructureKind, name string) string {
	return "/structures/" + string(kind) + "/" + url.PathEscape(name)
}

// JSString quotes s as a JavaScript string literal for Datastar expressions.
// The JSON encoding escapes quotes, line terminators and HTML-sensitive
// characters, so the literal is safe inside attributes and script blocks.
func JSString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// strings always marshal; invalid UTF-8 is replaced, not rejected
		return `""`
	}
	return string(b)
}

// Get builds a Datastar GET action.
func Get(path string) string {
	return "@get(" + JSString(path) + ")"
}

// Post builds a Datastar POST action.
func Post(path string) string {
	return "@post(" + JSString(path) + ")"
}
