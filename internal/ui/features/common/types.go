// Package common provides shared types and utilities for UI features.
package common

// TreeNode represents a node in the explorer tree.
type TreeNode struct {
	Name     string
	Path     string // select URL for leaves, empty for folders
	Type     string // "folder", "table" or "view"
	Children []TreeNode
}

// SidebarData holds data needed for the sidebar rendering.
type SidebarData struct {
	ExplorerTree []TreeNode
	Current      string // name of the selected structure
}

// Signals represents the signals sent from the frontend.
type Signals struct {
	SQL       string `json:"sql"`
	Selection string `json:"selection"`
	ViewID    string `json:"viewId"`
	CellValue string `json:"cellValue"`
}

// Banner kinds.
const (
	BannerSuccess = "success"
	BannerError   = "error"
)

// BannerData is a message shown above the result panel.
type BannerData struct {
	Kind string
	Text string
}
