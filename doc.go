// Package wren implements a local research-assistant agent core: a bounded
// reasoning loop between a chat language model and an external tool server.
//
// Given a natural-language query, the orchestrator interleaves LM text
// generation with tool invocations — web search, page fetches, note
// storage — until the LM produces a final answer, then returns that answer
// bundled with a trace of tool executions, a deduplicated source list, a
// suggested note title, and follow-up question suggestions.
//
// The LM and tool-server backends are external collaborators, consumed
// through the small LMClient and ToolClient interfaces; this package ships
// one concrete implementation of each (see llm/ollamacompat and mcpclient)
// alongside the orchestrator itself.
package wren
