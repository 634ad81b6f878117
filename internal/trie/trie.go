// Package trie stores sequences of path segments and answers prefix queries
// over them. It backs the engine's ignored-directory lookup.
package trie

import (
	"path/filepath"
	"sort"
	"strings"
)

/*
Nodes live in a single arena slice and refer to their children by index.
The root is always node 0. A node marked end terminates an inserted
sequence; any sequence passing through it has that inserted sequence as a
prefix.
*/

// NodeIndex is the index of a node in the arena.
type NodeIndex int

// Arena is a memory pool that stores all trie nodes.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	children map[string]NodeIndex
	isEnd    bool
}

// NewArena creates an arena holding only the root node.
func NewArena() *Arena {
	arena := &Arena{nodes: make([]arenaNode, 0, 64)}
	arena.newNode()
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return idx
}

// Insert adds sequence to the trie.
func (a *Arena) Insert(sequence []string) {
	current := NodeIndex(0)
	for _, part := range sequence {
		childIdx, exists := a.nodes[current].children[part]
		if !exists {
			childIdx = a.newNode()
			a.nodes[current].children[part] = childIdx
		}
		current = childIdx
	}
	a.nodes[current].isEnd = true
}

// HasPrefixOf reports whether some inserted sequence is a prefix of, or
// equal to, sequence.
func (a *Arena) HasPrefixOf(sequence []string) bool {
	current := NodeIndex(0)
	if a.nodes[current].isEnd {
		return true
	}
	for _, part := range sequence {
		next, ok := a.nodes[current].children[part]
		if !ok {
			return false
		}
		if a.nodes[next].isEnd {
			return true
		}
		current = next
	}
	return false
}

// DebugString renders the trie with sorted keys, `*` marking ends.
func (a *Arena) DebugString() string {
	return a.debugStringNode(NodeIndex(0))
}

func (a *Arena) debugStringNode(idx NodeIndex) string {
	node := a.nodes[idx]
	var sb strings.Builder

	if node.isEnd {
		sb.WriteString("*")
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString("(")
		sb.WriteString(a.debugStringNode(node.children[key]))
		sb.WriteString(")")
	}
	return sb.String()
}

// PathSet is a set of directories. A path belongs to the set when it is one
// of the directories or lies beneath one.
type PathSet struct {
	arena *Arena
	size  int
}

func NewPathSet() *PathSet {
	return &PathSet{arena: NewArena()}
}

// Add inserts dir into the set.
func (s *PathSet) Add(dir string) {
	s.arena.Insert(Segments(dir))
	s.size++
}

// Contains reports whether path is a member directory or lies beneath one.
func (s *PathSet) Contains(path string) bool {
	if s == nil || s.size == 0 {
		return false
	}
	return s.arena.HasPrefixOf(Segments(path))
}

func (s *PathSet) Len() int {
	return s.size
}

func (s *PathSet) DebugString() string {
	return s.arena.DebugString()
}

// Segments splits a cleaned path into its elements. An absolute path keeps
// a leading empty segment so that it never matches a relative one.
func Segments(path string) []string {
	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == "." {
		return nil
	}
	return strings.Split(clean, "/")
}
