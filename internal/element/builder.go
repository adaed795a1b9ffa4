package element

const (
	DescriptionName = "description"
	ParametersName  = "parameters"
	ReturnsName     = "returns"
)

// Decl is what a scanner knows about a declaration before documentation is attached.
type Decl struct {
	Name          string
	Kind          Kind
	Accessibility Accessibility
	Line          int
	ReturnType    string
	Parameters    string
	Tag           string
}

// Build produces a finished element. Callable kinds get up to three synthetic
// children (description, parameters, returns) placed first, each only when
// the documentation provides it.
func Build(d Decl, doc Doc) Element {
	access := d.Accessibility
	if access == "" {
		access = AccessDefault
	}

	e := Element{
		Name:          d.Name,
		Kind:          d.Kind,
		Accessibility: access,
		Line:          d.Line,
		Children:      []Element{},
		Comment:       doc.Summary,
		ReturnType:    d.ReturnType,
		Parameters:    d.Parameters,
		Returns:       doc.Returns,
		Tag:           d.Tag,
	}

	if len(doc.Params) > 0 {
		e.ParamDescriptions = append([]ParamDoc(nil), doc.Params...)
	}

	if d.Kind.Callable() {
		e.Children = append(e.Children, pseudoChildren(d.Line, doc)...)
	}

	return e
}

func pseudoChildren(line int, doc Doc) []Element {
	var out []Element

	if doc.Summary != "" {
		out = append(out, pseudo(DescriptionName, doc.Summary, line))
	}

	if len(doc.Params) > 0 {
		params := pseudo(ParametersName, "", line)
		for _, p := range doc.Params {
			params.Children = append(params.Children, pseudo(p.Name, p.Description, line))
		}
		out = append(out, params)
	}

	if doc.Returns != "" {
		out = append(out, pseudo(ReturnsName, doc.Returns, line))
	}

	return out
}

func pseudo(name, comment string, line int) Element {
	return Element{
		Name:          name,
		Kind:          KindVariable,
		Accessibility: AccessDefault,
		Line:          line,
		Children:      []Element{},
		Comment:       comment,
		Synthetic:     true,
	}
}
