package gemini

// generateContentPayload is the request body of the generateContent call.
// Only the fields this service uses are modeled.
type generateContentPayload struct {
	Contents []Content `json:"contents"`

	// Tools optionally attaches capabilities to the generation request.
	// The only one used here is search grounding.
	Tools []Tool `json:"tools,omitempty"`
}

// Content is a single turn of model input or output, made up of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one piece of a content turn. Exactly one of Text or InlineData
// is set.
type Part struct {
	Text string `json:"text,omitempty"`

	// InlineData carries binary payloads, base64 encoded. Image model
	// responses return the generated image this way.
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MIMEType string `json:"mimeType"`

	// Data is the base64 encoded payload
	Data string `json:"data"`
}

// Tool attaches an extra capability to a generation request.
type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

// GoogleSearch grounds the generation on live web-search results. The
// api expects an empty object; its presence is what enables grounding.
type GoogleSearch struct{}

// generateContentResponse is the subset of the generateContent response
// this service reads.
type generateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content Content `json:"content"`
}

// Image is a generated image payload: the decoded bytes plus the mime
// type the provider declared for them.
type Image struct {
	Data     []byte
	MIMEType string
}

// TextOptions configures a single text generation call.
type TextOptions struct {
	// Model overrides the client's default text model
	Model string

	// GoogleSearch attaches the search grounding tool to the request
	GoogleSearch bool
}
