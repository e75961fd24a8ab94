package rom

import "encoding/binary"

// RootDirID is the fixed directory ID of the file tree's root (§3:
// directory IDs are >= 0xF000).
const RootDirID = 0xF000

const fntMainRowSize = 8

// FileTreeNode is one node of the rose tree §3 describes: a directory
// (with Children) or a file (with FileID, contents held elsewhere by
// the FAT/file-image block).
type FileTreeNode struct {
	Name     string
	IsDir    bool
	DirID    uint32 // valid when IsDir; >= RootDirID
	ParentID uint32 // valid when IsDir; the root stores the directory count here instead
	FileID   uint32 // valid when !IsDir; < RootDirID
	Contents []byte // valid when !IsDir
	Children []*FileTreeNode
}

type fntRow struct {
	subtableOffset uint32
	firstFileID    uint16
	field3         uint16 // parent id, except dir count at index 0
}

func parseFNTRow(b []byte) fntRow {
	return fntRow{
		subtableOffset: binary.LittleEndian.Uint32(b[0:]),
		firstFileID:    binary.LittleEndian.Uint16(b[4:]),
		field3:         binary.LittleEndian.Uint16(b[6:]),
	}
}

// ParseFNT parses the packed file name table into a file tree rooted
// at directory ID RootDirID.
func ParseFNT(b []byte) (*FileTreeNode, error) {
	if len(b) < fntMainRowSize {
		return nil, newErr(KindSizeMismatch, "fnt.parse",
			"FNT must be at least %d bytes, got %d", fntMainRowSize, len(b))
	}
	root := parseFNTRow(b)
	dirCount := int(root.field3)
	if dirCount < 1 || dirCount*fntMainRowSize > len(b) {
		return nil, newErr(KindSizeMismatch, "fnt.parse", "implausible directory count %d", dirCount)
	}

	rows := make([]fntRow, dirCount)
	for i := range rows {
		rows[i] = parseFNTRow(b[i*fntMainRowSize:])
	}

	return buildFNTDir(b, rows, 0, uint32(dirCount))
}

func buildFNTDir(b []byte, rows []fntRow, index int, dirCount uint32) (*FileTreeNode, error) {
	row := rows[index]
	node := &FileTreeNode{
		IsDir: true,
		DirID: RootDirID + uint32(index),
	}
	if index == 0 {
		node.ParentID = dirCount
	} else {
		node.ParentID = uint32(row.field3)
	}

	pos := int(row.subtableOffset)
	fileID := uint32(row.firstFileID)
	for {
		if pos >= len(b) {
			return nil, newErr(KindSizeMismatch, "fnt.parse", "subtable for directory %#04x runs past end of FNT", node.DirID)
		}
		lenByte := b[pos]
		pos++
		if lenByte == 0 {
			break
		}
		isDir := lenByte&0x80 != 0
		nameLen := int(lenByte & 0x7F)
		if pos+nameLen > len(b) {
			return nil, newErr(KindSizeMismatch, "fnt.parse", "entry name runs past end of FNT")
		}
		name := string(b[pos : pos+nameLen])
		pos += nameLen

		if isDir {
			if pos+2 > len(b) {
				return nil, newErr(KindSizeMismatch, "fnt.parse", "subdirectory id runs past end of FNT")
			}
			childID := binary.LittleEndian.Uint16(b[pos:])
			pos += 2
			if childID < RootDirID {
				return nil, newErr(KindMagicMismatch, "fnt.parse", "subdirectory id %#04x below RootDirID", childID)
			}
			childIndex := int(childID) - RootDirID
			if childIndex < 0 || childIndex >= len(rows) {
				return nil, newErr(KindSizeMismatch, "fnt.parse", "subdirectory id %#04x out of range", childID)
			}
			child, err := buildFNTDir(b, rows, childIndex, dirCount)
			if err != nil {
				return nil, err
			}
			child.Name = name
			node.Children = append(node.Children, child)
		} else {
			node.Children = append(node.Children, &FileTreeNode{Name: name, FileID: fileID})
			fileID++
		}
	}

	return node, nil
}

// FNTBytes serializes root back into a packed file name table.
//
// Directories are laid out in ascending DirID order, both in the main
// table and in subtable placement; this matches how ParseFNT assigns
// DirID (by main-table index) and is the layout this package's own
// assembler produces, but is not guaranteed to reproduce an arbitrary
// foreign FNT's subtable ordering byte-for-byte.
func FNTBytes(root *FileTreeNode) []byte {
	dirs := map[uint32]*FileTreeNode{}
	collectDirs(root, dirs)

	order := make([]*FileTreeNode, len(dirs))
	for id, d := range dirs {
		order[id-RootDirID] = d
	}

	subtables := make([][]byte, len(order))
	offsets := make([]uint32, len(order))
	cursor := uint32(len(order) * fntMainRowSize)
	for i, d := range order {
		subtables[i] = encodeFNTSubtable(d)
		offsets[i] = cursor
		cursor += uint32(len(subtables[i]))
	}

	out := make([]byte, cursor)
	for i, d := range order {
		row := out[i*fntMainRowSize:]
		binary.LittleEndian.PutUint32(row[0:], offsets[i])
		binary.LittleEndian.PutUint16(row[4:], firstFileID(d))
		if i == 0 {
			binary.LittleEndian.PutUint16(row[6:], uint16(len(order)))
		} else {
			binary.LittleEndian.PutUint16(row[6:], uint16(d.ParentID))
		}
		copy(out[offsets[i]:], subtables[i])
	}
	return out
}

func firstFileID(d *FileTreeNode) uint16 {
	for _, c := range d.Children {
		if !c.IsDir {
			return uint16(c.FileID)
		}
	}
	return 0
}

func collectDirs(node *FileTreeNode, out map[uint32]*FileTreeNode) {
	out[node.DirID] = node
	for _, c := range node.Children {
		if c.IsDir {
			collectDirs(c, out)
		}
	}
}

func encodeFNTSubtable(d *FileTreeNode) []byte {
	var buf []byte
	for _, c := range d.Children {
		if c.IsDir {
			buf = append(buf, byte(len(c.Name))|0x80)
			buf = append(buf, []byte(c.Name)...)
			var id [2]byte
			binary.LittleEndian.PutUint16(id[:], uint16(c.DirID))
			buf = append(buf, id[:]...)
		} else {
			buf = append(buf, byte(len(c.Name)))
			buf = append(buf, []byte(c.Name)...)
		}
	}
	return append(buf, 0)
}
