package ollamacompat

import "github.com/getwren/wren"

// buildBody converts a wren.ChatRequest into Ollama's /api/chat body.
// stream controls the "stream" field; callers append "/api/chat" and
// set any per-request generation params via req.GenerationParams.
func buildBody(req wren.ChatRequest, stream bool) chatRequest {
	msgs := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	body := chatRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   stream,
	}

	if req.GenerationParams != nil && req.GenerationParams.Temperature != nil {
		body.Options = &requestOpts{Temperature: req.GenerationParams.Temperature}
	}

	return body
}
