// Package cellvm implements the REFAL machine memory model: an arena of
// uniformly sized, tagged cells linked into doubly-linked lists. The same
// arena simultaneously holds the compiled bytecode program and the runtime
// view field, so that substitution is always an O(1) splice of index ranges,
// never a copy.
package cellvm

import "fmt"

// Tag identifies what a Cell's Payload means and, for the control tags,
// which opcode it is. Data tags and opcode/marker tags share one space so
// that bytecode and view-field cells can be told apart purely by tag and
// reachability, never by a separate "kind" field.
type Tag uint8

//nolint:revive
const (
	Undefined Tag = iota

	// data tags
	Char         // Unicode scalar in Payload
	Number       // signed integer in Payload
	Atom         // interned identifier string, Payload is an intern.ID
	OpenBracket  // structural '(' ; Payload is the partner's Index once linked
	CloseBracket // structural ')' ; Payload is the partner's Index once linked

	// opcode/marker tags
	Sentence   // Payload = Index of next sentence, or 0 for the last one
	Equal      // separates a sentence's pattern from its result
	OpenCall   // '<' ; Payload carries the callee value once resolved
	Execute    // '>' ; Payload carries the callee value; Tag2==Complete marks a tail call
	Identifier // non-call identifier reference; Payload is the callee/value
	SVar       // s-variable occurrence; Payload is the slot index
	TVar       // t-variable occurrence; Payload is the slot index
	EVar       // e-variable occurrence; Payload is the slot index
	Complete   // terminates a sentence's result (no following sentence)

	maxTag
)

var tagNames = [...]string{
	Undefined:    "undefined",
	Char:         "char",
	Number:       "number",
	Atom:         "atom",
	OpenBracket:  "open-bracket",
	CloseBracket: "close-bracket",
	Sentence:     "sentence",
	Equal:        "equal",
	OpenCall:     "open-call",
	Execute:      "execute",
	Identifier:   "identifier",
	SVar:         "svar",
	TVar:         "tvar",
	EVar:         "evar",
	Complete:     "complete",
}

func (t Tag) String() string {
	if t < maxTag {
		return tagNames[t]
	}
	return fmt.Sprintf("illegal tag (%d)", uint8(t))
}

// IsVar reports whether t is one of the three pattern-variable tags.
func (t Tag) IsVar() bool { return t == SVar || t == TVar || t == EVar }

// Index addresses a cell within an Arena. Index 0 is reserved: it is the
// sentinel cell whose Next field of 0 signals "the free list must be
// extended here", and it is never a valid live cell.
type Index uint32

// IndexMax is the largest index an Arena may allocate: 2^28 - 1, matching
// the 28-bit Prev/Next link fields of the cell format this package models.
const IndexMax Index = 1<<28 - 1

// CopyFlag is the Tag2 value recorded on an evar/tvar result-cell occurrence
// to mean "the interpreter must copy this occurrence instead of moving it",
// set by the translator on the first of two occurrences of the same
// non-s-variable in a sentence's result (see Arena.MarkCopy).
const CopyFlag = 1

// Cell is one node of the arena's doubly-linked list. In the system this
// package models, a cell is packed into 16 bytes (a 64-bit payload plus two
// 4-bit tags and two 28-bit links); here it is a plain struct, since Go gives
// us no portable bitfields, but the fields and their meaning are unchanged.
type Cell struct {
	Payload uint64 // interpreted per Tag: rune, signed int, intern.ID, or Index
	Tag     Tag
	Tag2    uint8 // CopyFlag on evar/tvar occurrences; Tag(Complete) on a tail Execute
	Prev    Index
	Next    Index
}

// Rune returns Payload reinterpreted as a Unicode scalar (valid when Tag ==
// Char).
func (c Cell) Rune() rune { return rune(c.Payload) }

// Int returns Payload reinterpreted as a signed integer (valid when Tag ==
// Number).
func (c Cell) Int() int64 { return int64(c.Payload) }

// Link returns Payload reinterpreted as a cell Index (valid for bracket
// partners, sentence/open-call/execute/identifier targets, and variable slot
// numbers).
func (c Cell) Link() Index { return Index(c.Payload) }

// IsTailCall reports whether an Execute cell is marked as a tail call.
func (c Cell) IsTailCall() bool { return c.Tag == Execute && Tag(c.Tag2) == Complete }

// NeedsCopy reports whether a variable-reference cell was marked by the
// translator as requiring a copy (rather than a move) at substitution time.
func (c Cell) NeedsCopy() bool { return c.Tag2 == CopyFlag }
