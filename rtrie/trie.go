// Package rtrie implements the ternary search trie that is the REFAL
// translator's symbol table: it maps identifier strings (function names,
// module names, and scoped local-variable names) to typed values, and also
// hosts module namespaces and per-sentence local-variable scoping as
// sub-trees reached through synthetic, non-source code points.
package rtrie

import "fmt"

// Index addresses a node in a Trie's node array. The root is always 0.
type Index int32

// NoNode is returned by the Find* family when a key is absent.
const NoNode Index = -1

// Kind identifies what a Value's Payload means.
type Kind uint8

//nolint:revive
const (
	Undefined   Kind = iota // referenced but not yet defined
	MachineCode             // Payload is an ordinal into the built-in function table
	ByteCode                // Payload is the cell index of the function's first opcode
	Enum                    // Payload is a unique small integer (empty functions, module markers, local slots)
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case MachineCode:
		return "machine-code"
	case ByteCode:
		return "byte-code"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("illegal kind (%d)", uint8(k))
	}
}

// Value is the payload the trie associates with a key.
type Value struct {
	Kind    Kind
	Payload uint32
}

// IsModule reports whether v denotes a module namespace marker: an Enum
// value with Payload 0.
func (v Value) IsModule() bool { return v.Kind == Enum && v.Payload == 0 }

// IsCallable reports whether v can be the target of an active expression:
// anything other than Undefined or Enum.
func (v Value) IsCallable() bool {
	return v.Kind == MachineCode || v.Kind == ByteCode
}

// MachineCodeBit distinguishes a built-in ordinal from a byte-code cell
// index when both are packed into a single call-cell payload by Encode.
const MachineCodeBit = uint64(1) << 63

// Encode packs v into the uint64 payload an open-call/execute/identifier
// cell carries: the high bit set means Payload is a built-in ordinal
// (MachineCode), clear means it is a byte-code cell index or a plain enum
// value.
func (v Value) Encode() uint64 {
	if v.Kind == MachineCode {
		return uint64(v.Payload) | MachineCodeBit
	}
	return uint64(v.Payload)
}

// DecodeCallee is Encode's inverse: it reports the ordinal/index packed into
// payload and whether it names a built-in (MachineCode) rather than
// byte-code.
func DecodeCallee(payload uint64) (ordinal uint32, isMachineCode bool) {
	if payload&MachineCodeBit != 0 {
		return uint32(payload &^ MachineCodeBit), true
	}
	return uint32(payload), false
}

type node struct {
	chr                rune
	next, left, right  Index
	val                Value
}

// ModuleEdge is the synthetic code point under which a module's exported
// identifiers live, separating them from names private to the module's
// top level.
const ModuleEdge = ' '

// LocalSeparator returns the synthetic code point that scopes local
// variables declared in the ordinal-th sentence of a function (0-based):
// it lies above the Unicode range, so it can never collide with a source
// identifier character, and advancing it per sentence makes a variable
// declared in one sentence invisible in another.
func LocalSeparator(ordinal int) rune {
	return rune(0x110000 + ordinal)
}

// Trie is a ternary search trie over Unicode scalars. The zero value is not
// usable; use New.
type Trie struct {
	nodes []node
	free  Index
}

// New returns an empty Trie sized for roughly hint nodes.
func New(hint int) *Trie {
	if hint <= 0 {
		hint = 64
	}
	t := &Trie{nodes: make([]node, 1, hint+1), free: 1}
	return t
}

// Len returns the number of nodes allocated so far, including the root.
func (t *Trie) Len() int { return int(t.free) }

// newNode allocates a node for chr and returns its index. chr must not be
// the zero rune: the root's chr is 0, and rtrie relies on every real key
// character comparing greater than the as-yet-unpopulated root.
func (t *Trie) newNode(chr rune) Index {
	if chr == 0 {
		panic("rtrie: cannot allocate a node for the zero rune")
	}
	if int(t.free) == len(t.nodes) {
		t.nodes = append(t.nodes, node{})
	}
	idx := t.free
	t.nodes[idx] = node{chr: chr}
	t.free++
	return idx
}

// InsertAt finds (allocating if absent) the child of idx keyed by chr.
func (t *Trie) InsertAt(idx Index, chr rune) Index {
	for {
		switch n := &t.nodes[idx]; {
		case chr == n.chr:
			return idx
		case chr > n.chr:
			if n.right != 0 {
				idx = n.right
			} else {
				n.right = t.newNode(chr)
				return n.right
			}
		default: // chr < n.chr
			if n.left != 0 {
				idx = n.left
			} else {
				n.left = t.newNode(chr)
				return n.left
			}
		}
	}
}

// InsertFirst finds (allocating if absent) the root-level node for chr.
func (t *Trie) InsertFirst(chr rune) Index { return t.InsertAt(0, chr) }

// InsertNext finds (allocating if absent) the node for chr that continues
// the key started at idx.
func (t *Trie) InsertNext(idx Index, chr rune) Index {
	if t.nodes[idx].next == 0 {
		t.nodes[idx].next = t.newNode(chr)
		return t.nodes[idx].next
	}
	return t.InsertAt(t.nodes[idx].next, chr)
}

// FindAt searches for chr starting at idx, returning NoNode if absent.
func (t *Trie) FindAt(idx Index, chr rune) Index {
	for {
		switch n := &t.nodes[idx]; {
		case chr == n.chr:
			return idx
		case chr > n.chr:
			if idx = n.right; idx == 0 {
				return NoNode
			}
		default:
			if idx = n.left; idx == 0 {
				return NoNode
			}
		}
	}
}

// FindFirst searches for chr at the root level.
func (t *Trie) FindFirst(chr rune) Index { return t.FindAt(0, chr) }

// FindNext searches for chr continuing the key started at idx. If idx is
// NoNode, it is propagated (so callers can chain Find calls without checking
// after every character).
func (t *Trie) FindNext(idx Index, chr rune) Index {
	if idx == NoNode || t.nodes[idx].next == 0 {
		return NoNode
	}
	return t.FindAt(t.nodes[idx].next, chr)
}

// Value returns the value stored at idx.
func (t *Trie) Value(idx Index) Value { return t.nodes[idx].val }

// SetValue overwrites the value stored at idx.
func (t *Trie) SetValue(idx Index, v Value) { t.nodes[idx].val = v }

// Next returns the child index that continues the key through idx (0 if
// none), the edge InsertNext/FindNext walk.
func (t *Trie) Next(idx Index) Index { return t.nodes[idx].next }

// GetValue walks key character by character, alternating between the
// ternary sidestep and the Next edge on a hit, and returns the value stored
// for it, or the zero Value if key is absent.
func (t *Trie) GetValue(key []rune) Value {
	if len(key) == 0 {
		return Value{}
	}
	idx := Index(0)
	chr := key[0]
	key = key[1:]
	for {
		switch n := &t.nodes[idx]; {
		case chr == n.chr:
			if len(key) == 0 {
				return n.val
			}
			if n.next == 0 {
				return Value{}
			}
			chr, key = key[0], key[1:]
			idx = n.next
		case chr > n.chr:
			if idx = n.right; idx == 0 {
				return Value{}
			}
		default:
			if idx = n.left; idx == 0 {
				return Value{}
			}
		}
	}
}

// Insert is a convenience wrapper that walks InsertFirst/InsertNext across
// every rune of key and returns the final node's index.
func (t *Trie) Insert(key []rune) Index {
	idx := t.InsertFirst(key[0])
	for _, c := range key[1:] {
		idx = t.InsertNext(idx, c)
	}
	return idx
}

// InsertUnder is like Insert, but walks the key starting from the Next edge
// of root instead of from the trie's own root (index 0). It is how the
// translator reaches into a module's private subtree, or into a function's
// per-sentence local-variable scope, without the root-level ternary search
// ever seeing those keys.
func (t *Trie) InsertUnder(root Index, key []rune) Index {
	idx := t.InsertNext(root, key[0])
	for _, c := range key[1:] {
		idx = t.InsertNext(idx, c)
	}
	return idx
}

// FindUnder is like FindAt starting from root's Next edge: it looks up key
// as a child sequence of root rather than as a root-level key.
func (t *Trie) FindUnder(root Index, key []rune) Index {
	if t.nodes[root].next == 0 {
		return NoNode
	}
	idx := t.FindAt(t.nodes[root].next, key[0])
	for _, c := range key[1:] {
		if idx == NoNode {
			return NoNode
		}
		idx = t.FindNext(idx, c)
	}
	return idx
}
