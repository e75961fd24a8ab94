package project

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ndskit/ndspack/lib/rom"
)

// writeFileTree materializes root's leaf files under dir, preserving
// directory structure. Mirrors the teacher's folder container walk
// (internal/container/folder.go), but writing instead of enumerating.
func writeFileTree(dir string, root *rom.FileTreeNode) error {
	var walk func(node *rom.FileTreeNode, rel string) error
	walk = func(node *rom.FileTreeNode, rel string) error {
		for _, c := range node.Children {
			childRel := filepath.Join(rel, c.Name)
			if c.IsDir {
				if err := os.MkdirAll(filepath.Join(dir, childRel), 0o755); err != nil {
					return fmt.Errorf("project: creating directory %s: %w", childRel, err)
				}
				if err := walk(c, childRel); err != nil {
					return err
				}
				continue
			}
			full := filepath.Join(dir, childRel)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return fmt.Errorf("project: creating directory for %s: %w", childRel, err)
			}
			if err := os.WriteFile(full, c.Contents, 0o644); err != nil {
				return fmt.Errorf("project: writing %s: %w", childRel, err)
			}
		}
		return nil
	}
	return walk(root, "")
}

// readFileTree rebuilds a rose tree from dir, assigning directory IDs
// depth-first starting at rom.RootDirID and file IDs sequentially in
// each directory's subtable order, matching ParseFNT's own assignment
// convention so a round trip through this package is stable.
func readFileTree(dir string) (*rom.FileTreeNode, error) {
	nextDirID := uint32(rom.RootDirID)
	nextFileID := uint32(0)

	var build func(path, name string, parentID uint32) (*rom.FileTreeNode, error)
	build = func(path, name string, parentID uint32) (*rom.FileTreeNode, error) {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("project: reading directory %s: %w", path, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		node := &rom.FileTreeNode{Name: name, IsDir: true, DirID: nextDirID, ParentID: parentID}
		nextDirID++

		node.Children = make([]*rom.FileTreeNode, len(entries))
		for i, e := range entries {
			if e.IsDir() {
				continue
			}
			childPath := filepath.Join(path, e.Name())
			contents, err := os.ReadFile(childPath)
			if err != nil {
				return nil, fmt.Errorf("project: reading %s: %w", childPath, err)
			}
			node.Children[i] = &rom.FileTreeNode{
				Name: e.Name(), FileID: nextFileID, Contents: contents,
			}
			nextFileID++
		}
		for i, e := range entries {
			if !e.IsDir() {
				continue
			}
			child, err := build(filepath.Join(path, e.Name()), e.Name(), node.DirID)
			if err != nil {
				return nil, err
			}
			node.Children[i] = child
		}
		return node, nil
	}

	root, err := build(dir, "", 0)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// readPathOrder reads one slash-joined relative path per line.
func readPathOrder(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("project: opening %s: %w", path, err)
	}
	defer f.Close()

	var order [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		order = append(order, strings.Split(line, "/"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("project: reading %s: %w", path, err)
	}
	return order, nil
}

// writePathOrder writes the emission order back out, one slash-joined
// path per line, so it survives an extract/build round trip (§4.9:
// "preserved across extract/build").
func writePathOrder(path string, order [][]string) error {
	var sb strings.Builder
	for _, p := range order {
		sb.WriteString(strings.Join(p, "/"))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("project: writing %s: %w", path, err)
	}
	return nil
}

// collectPathOrder returns every leaf file's path in the tree's own
// traversal order, used when materializing a project from a ROM that
// carries no separately-tracked emission order.
func collectPathOrder(root *rom.FileTreeNode) [][]string {
	var out [][]string
	r := &rom.ROM{Files: root}
	r.Walk(func(path []string, node *rom.FileTreeNode) {
		if !node.IsDir {
			out = append(out, append([]string(nil), path...))
		}
	})
	return out
}
