package ollamacompat

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/getwren/wren"
)

// streamNDJSON reads Ollama's newline-delimited JSON stream from r, forwarding
// each chunk's message content to ch as it arrives and accumulating the full
// response. The channel is always closed before returning, mirroring the
// SSE accumulation pattern of an OpenAI-compatible streaming client adapted
// to Ollama's simpler one-JSON-object-per-line framing.
func streamNDJSON(r io.Reader, ch chan<- string, logger *slog.Logger) (wren.ChatResponse, error) {
	defer close(ch)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var full wren.ChatResponse
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			logger.Warn("ollamacompat: skipping malformed NDJSON line", "error", err)
			continue
		}

		if chunk.Message.Content != "" {
			ch <- chunk.Message.Content
			full.Content += chunk.Message.Content
		}
		if chunk.Done {
			full.Usage = wren.Usage{
				InputTokens:  chunk.PromptEvalCount,
				OutputTokens: chunk.EvalCount,
			}
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return full, err
	}
	return full, nil
}
