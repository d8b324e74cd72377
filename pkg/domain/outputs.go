package domain

// OutputSet holds the artifact paths derived from one output prefix.
//
// In split mode Text, Image, Details and Error are used. In combined mode
// only Combined survives; Text is written during the run and removed once it
// has been folded into the bundle.
type OutputSet struct {
	Prefix   string
	Text     string
	Image    string
	Details  string
	Error    string
	Combined string
}

// NewOutputSet derives every artifact path from prefix.
func NewOutputSet(prefix string) OutputSet {
	return OutputSet{
		Prefix:   prefix,
		Text:     prefix + ".txt",
		Image:    prefix + ".png",
		Details:  prefix + ".json",
		Error:    prefix + ".err",
		Combined: prefix,
	}
}
