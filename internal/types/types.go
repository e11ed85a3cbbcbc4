package types

// PenReference identifies a single pen on the site.
type PenReference struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// ExtractedContent holds the compiled code and external resources read from a pen
type ExtractedContent struct {
	HTML            string
	CSS             string
	JS              string
	ExternalScripts []string
	ExternalStyles  []string
}

// IndexEntry is one anchor in the generated index page.
type IndexEntry struct {
	Title string
	Slug  string
}
