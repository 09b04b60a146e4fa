package notification

// Messages holds the localized push strings
type Messages struct {
	AssignedTitle string
}

var catalog = map[string]Messages{
	"ja": {AssignedTitle: "新しいタスクが割り当てられました"},
	"en": {AssignedTitle: "New task assigned"},
}

// MessagesFor returns the catalog entry for locale, falling back to Japanese.
func MessagesFor(locale string) Messages {
	if m, ok := catalog[locale]; ok {
		return m
	}
	return catalog["ja"]
}
