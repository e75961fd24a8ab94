package rom

import "github.com/ndskit/ndspack/lib/logo"

// ROM is the owned, mutable Parsed ROM of §3: everything an Extractor
// produces and an Assembler consumes.
type ROM struct {
	Header     *Header
	HeaderLogo logo.Bitmap

	ARM9         *Program
	ARM9Overlays []Overlay
	ARM7         *Program
	ARM7Overlays []Overlay

	ITCM             *AutoloadBlock
	DTCM             *AutoloadBlock
	UnknownAutoloads []AutoloadBlock

	Banner *Banner
	Files  *FileTreeNode
}

// Walk visits every node of the file tree in subtable order,
// depth-first, calling fn with the path components leading to it.
func (r *ROM) Walk(fn func(path []string, node *FileTreeNode)) {
	if r.Files == nil {
		return
	}
	walkTree(r.Files, nil, fn)
}

func walkTree(node *FileTreeNode, prefix []string, fn func([]string, *FileTreeNode)) {
	for _, c := range node.Children {
		path := append(append([]string{}, prefix...), c.Name)
		fn(path, c)
		if c.IsDir {
			walkTree(c, path, fn)
		}
	}
}

// AllOverlays returns the ARM9 and ARM7 overlay tables concatenated,
// for callers (e.g. the assembler's file layout step) that treat both
// uniformly.
func (r *ROM) AllOverlays() []Overlay {
	out := make([]Overlay, 0, len(r.ARM9Overlays)+len(r.ARM7Overlays))
	out = append(out, r.ARM9Overlays...)
	out = append(out, r.ARM7Overlays...)
	return out
}
