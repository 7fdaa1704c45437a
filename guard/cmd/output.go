package cmd

import "github.com/sandertv/gophertunnel/minecraft/text"

// Output holds the messages and errors a command produced. The host decides
// how to present them; Lines returns them pre-coloured for Minecraft chat.
type Output struct {
	messages []string
	errors   []string
}

// Print adds a message to the output.
func (o *Output) Print(msg string) {
	o.messages = append(o.messages, msg)
}

// Error adds an error message to the output.
func (o *Output) Error(msg string) {
	o.errors = append(o.errors, msg)
}

// OK reports if the command produced no errors.
func (o *Output) OK() bool {
	return len(o.errors) == 0
}

// Messages returns the plain messages of the output.
func (o *Output) Messages() []string { return o.messages }

// Errors returns the plain error messages of the output.
func (o *Output) Errors() []string { return o.errors }

// Lines returns all output in order, messages coloured yellow and errors
// red, ready to be sent to a player's chat.
func (o *Output) Lines() []string {
	out := make([]string, 0, len(o.messages)+len(o.errors))
	for _, msg := range o.messages {
		out = append(out, text.Colourf("<yellow>%v</yellow>", msg))
	}
	for _, msg := range o.errors {
		out = append(out, text.Colourf("<red>%v</red>", msg))
	}
	return out
}
