package extractor

import "fmt"

// Box names one of the pen's code boxes and how to reach its compiled view.
type Box struct {
	Name         string
	Menu         string
	ViewCompiled string
}

// Selectors collects everything the extractor knows about the pen page's
// markup. Site changes should only need edits here.
type Selectors struct {
	// ResultFrame is the preview iframe whose src signals readiness.
	ResultFrame string
	// Boxes are processed in order: markup, style, script.
	Boxes           []Box
	Editors         string
	ScriptResources string
	StyleResources  string
}

// DefaultSelectors matches the pen editor page.
var DefaultSelectors = Selectors{
	ResultFrame: "iframe#result",
	Boxes: []Box{
		{Name: "html", Menu: "#box-html .editor-dropdown-button", ViewCompiled: "#box-html .view-compiled-button"},
		{Name: "css", Menu: "#box-css .editor-dropdown-button", ViewCompiled: "#box-css .view-compiled-button"},
		{Name: "js", Menu: "#box-js .editor-dropdown-button", ViewCompiled: "#box-js .view-compiled-button"},
	},
	Editors:         ".CodeMirror",
	ScriptResources: "#js-external-resources input.external-resource",
	StyleResources:  "#css-external-resources input.external-resource",
}

type stepKind int

const (
	waitFunc stepKind = iota
	click
)

// step is one UI action between "loaded" and "extracted".
type step struct {
	name   string
	kind   stepKind
	target string
	reason string
}

// steps expands the selectors into the ordered UI script:
// iframe-ready, then menu + compiled for each box.
func (s Selectors) steps() []step {
	steps := []step{{
		name:   "iframe-ready",
		kind:   waitFunc,
		target: readinessExpression(s.ResultFrame),
		reason: "result preview never loaded",
	}}
	for _, box := range s.Boxes {
		steps = append(steps,
			step{
				name:   box.Name + "-menu",
				kind:   click,
				target: box.Menu,
				reason: "editor menu not available",
			},
			step{
				name:   box.Name + "-compiled",
				kind:   click,
				target: box.ViewCompiled,
				reason: "view compiled action not available",
			},
		)
	}
	return steps
}

func readinessExpression(frame string) string {
	return fmt.Sprintf(`(() => {
	const frame = document.querySelector(%q);
	return !!frame && (frame.getAttribute("src") || "").startsWith("https://");
})()`, frame)
}

func editorsExpression(editors string) string {
	return fmt.Sprintf(`(() => Array.from(document.querySelectorAll(%q))
	.slice(0, 3)
	.map(el => el.CodeMirror ? el.CodeMirror.getValue() : (el.textContent || "")))()`, editors)
}

func resourcesExpression(scripts, styles string) string {
	return fmt.Sprintf(`(() => {
	const values = sel => Array.from(document.querySelectorAll(sel))
		.map(el => (el.value || "").trim())
		.filter(v => v !== "");
	return {scripts: values(%q), styles: values(%q)};
})()`, scripts, styles)
}
