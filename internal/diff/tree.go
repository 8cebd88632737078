package diff

import (
	"sort"
	"strings"

	"github.com/sprite-ai/vouch/internal/model"
)

// FileTree builds the raw file entry tree from a parsed diff,
// splitting each file path into nested directory entries. Directory
// entries carry no status of their own; files carry the diff status.
func FileTree(ds *DiffSet) []model.FileEntry {
	root := &node{children: make(map[string]*node)}

	for _, f := range ds.Files {
		cur := root
		segs := strings.Split(f.Path, "/")
		for i, seg := range segs {
			path := strings.Join(segs[:i+1], "/")
			child, ok := cur.children[seg]
			if !ok {
				child = &node{
					entry:    model.FileEntry{Name: seg, Path: path, IsDir: i < len(segs)-1},
					children: make(map[string]*node),
				}
				cur.children[seg] = child
			}
			if i == len(segs)-1 {
				child.entry.Status = f.Status()
				child.entry.IsSymlink = f.IsSymlink
			}
			cur = child
		}
	}

	return root.build()
}

type node struct {
	entry    model.FileEntry
	children map[string]*node
}

func (n *node) build() []model.FileEntry {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.FileEntry, 0, len(names))
	for _, name := range names {
		c := n.children[name]
		c.entry.Children = c.build()
		out = append(out, c.entry)
	}
	return out
}
