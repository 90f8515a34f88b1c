package vm

import "strings"

// SelectorTable numbers selector names so a vtable can be indexed instead of
// searched. IDs are dense and start at 0.
//
// Only names some vtable defines are numbered. A send naming anything else
// misses without growing the table, so a host cannot inflate it by sending
// arbitrary strings.
type SelectorTable struct {
	ids   map[string]int
	names []string
}

// NewSelectorTable creates an empty table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{ids: make(map[string]int)}
}

// Intern returns the ID for name, numbering it on first use.
func (st *SelectorTable) Intern(name string) int {
	if id, ok := st.ids[name]; ok {
		return id
	}
	id := len(st.names)
	st.ids[name] = id
	st.names = append(st.names, name)
	return id
}

// Lookup returns the ID for name, or -1 if nothing defines it.
func (st *SelectorTable) Lookup(name string) int {
	if id, ok := st.ids[name]; ok {
		return id
	}
	return -1
}

// Name returns the name numbered id, or "".
func (st *SelectorTable) Name(id int) string {
	if id < 0 || id >= len(st.names) {
		return ""
	}
	return st.names[id]
}

// Len returns how many selectors have been numbered.
func (st *SelectorTable) Len() int {
	return len(st.names)
}

// binarySelectorChars are the characters a binary selector is spelled with.
const binarySelectorChars = `+-*/\<>=~,@%|&?!`

// SelectorArity returns the argument count a selector's spelling implies:
// one per colon for a keyword selector ("at:put:" takes 2), one for a
// binary selector ("+", "//", "~="), none for a unary one. An empty name
// gives -1.
func SelectorArity(name string) int {
	if name == "" {
		return -1
	}
	if n := strings.Count(name, ":"); n > 0 {
		return n
	}
	for i := 0; i < len(name); i++ {
		if strings.IndexByte(binarySelectorChars, name[i]) < 0 {
			return 0
		}
	}
	return 1
}
