// Package common provides shared utilities for UI features.
package common

import (
	"context"
	"sort"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// Explorer folder names.
const (
	TablesFolder = "Tables"
	ViewsFolder  = "Views"
)

// BuildExplorerTree groups tables and views into two folders. Both folders are
// always present so empty lists can show a placeholder.
func BuildExplorerTree(tables, views []core.StructureRef) []TreeNode {
	return []TreeNode{
		folder(TablesFolder, tables, core.KindTable),
		folder(ViewsFolder, views, core.KindView),
	}
}

func folder(name string, refs []core.StructureRef, kind core.StructureKind) TreeNode {
	node := TreeNode{
		Name:     name,
		Type:     "folder",
		Children: make([]TreeNode, 0, len(refs)),
	}
	for _, ref := range refs {
		node.Children = append(node.Children, TreeNode{
			Name: ref.Name,
			Path: StructurePath(kind, ref.Name),
			Type: string(kind),
		})
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Name < node.Children[j].Name
	})
	return node
}

// BuildSidebar lists the session's structures for the sidebar.
func BuildSidebar(ctx context.Context, sess *session.Session) (SidebarData, error) {
	sd := SidebarData{}
	if st := sess.Current(); st != nil && st.Kind != core.KindQuery {
		sd.Current = st.Name
	}
	tables, views, err := sess.Structures(ctx)
	if err != nil {
		return sd, err
	}
	sd.ExplorerTree = BuildExplorerTree(tables, views)
	return sd, nil
}
