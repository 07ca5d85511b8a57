package models

// ErrorType selects an error template
type ErrorType string

// Known error types. Hosts may use their own tags as well.
const (
	ErrorTypeDefault      ErrorType = "default"
	ErrorTypeService      ErrorType = "service"
	ErrorTypeSpeechToText ErrorType = "speechToText"
)

// ErrorMessage is a custom error template
type ErrorMessage struct {
	Text   string        `json:"text,omitempty" yaml:"text,omitempty"`
	Styles *MessageStyle `json:"styles,omitempty" yaml:"styles,omitempty"`
}

// ErrorMessages maps error types to templates. The "default" key is the
// fallback for types without their own template.
type ErrorMessages map[ErrorType]ErrorMessage

// ResolveText returns the text to display for an error of the given type.
// Priority: type template, default template, message, FallbackErrorText.
func (e ErrorMessages) ResolveText(errType ErrorType, message string) string {
	if t := e[errType].Text; t != "" {
		return t
	}
	if t := e[ErrorTypeDefault].Text; t != "" {
		return t
	}
	if message != "" {
		return message
	}
	return FallbackErrorText
}

// ResolveStyles returns the style for an error of the given type, or nil.
// Priority: type template, default template. There is no fallback style.
func (e ErrorMessages) ResolveStyles(errType ErrorType) *MessageStyle {
	if s := e[errType].Styles; s != nil {
		return s
	}
	return e[ErrorTypeDefault].Styles
}
