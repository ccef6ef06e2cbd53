package models

// ItemKind distinguishes the three artifact kinds in listings and trees.
type ItemKind string

const (
	KindLaunch   ItemKind = "launch"
	KindTask     ItemKind = "task"
	KindNotebook ItemKind = "notebook"
)

// KindMeta carries presentation attributes for an item kind.
type KindMeta struct {
	Icon      string
	Abbrev    string
	SortOrder int
}

// Kinds provides the built-in presentation defaults per kind.
var Kinds = map[ItemKind]KindMeta{
	KindLaunch: {
		Icon:      "▶",
		Abbrev:    "LCH",
		SortOrder: 10,
	},
	KindTask: {
		Icon:      "⚙",
		Abbrev:    "TSK",
		SortOrder: 20,
	},
	KindNotebook: {
		Icon:      "▢",
		Abbrev:    "NBK",
		SortOrder: 30,
	},
}

// SectionTitle returns the heading used for a kind's section in tree views.
func (k ItemKind) SectionTitle() string {
	switch k {
	case KindLaunch:
		return "Launches"
	case KindTask:
		return "Tasks"
	case KindNotebook:
		return "Notebooks"
	}
	return string(k)
}
