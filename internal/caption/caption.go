// Package caption implements the AI caption proxy and its client. The
// proxy is the only process holding the Gemini API key; clients talk to it
// over a small JSON contract and never see raw generation errors.
package caption

// Request types accepted by the proxy.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// ImagePayload carries base64-encoded image bytes and their MIME type.
type ImagePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// Request is the proxy's input: free text, or an image with optional text
// context.
type Request struct {
	Type   string        `json:"type"`
	Prompt string        `json:"prompt,omitempty"`
	Image  *ImagePayload `json:"image,omitempty"`
}

// Response is the proxy's output: exactly one of Caption or Error.
type Response struct {
	Caption string `json:"caption,omitempty"`
	Error   string `json:"error,omitempty"`
}
