package wren

import (
	"context"
	"errors"
	"time"
)

// toolWhitelist is the fixed set of tools the dispatcher will invoke.
// Anything else is rejected before the tool client is ever called.
var toolWhitelist = map[string]bool{
	"web_search": true,
	"fetch_page": true,
	"save_note":  true,
	"list_notes": true,
	"get_note":   true,
}

// defaultToolTimeout bounds a single tool dispatch. Configurable via
// Dispatcher.Timeout.
const defaultToolTimeout = 30 * time.Second

// OnToolStart is called before a tool is dispatched.
type OnToolStart func(name string, arguments map[string]any)

// OnToolComplete is called after a tool dispatch resolves, successful or
// not. result is nil when success is false.
type OnToolComplete func(name string, result map[string]any, success bool)

// Dispatcher validates, times, and invokes tool calls against a ToolClient
// (C5).
type Dispatcher struct {
	Client           ToolClient
	Timeout          time.Duration
	FetchExtractMode FetchExtractMode
	Tracer           Tracer
	OnStart          OnToolStart
	OnComplete       OnToolComplete
}

// Dispatch executes one tool call and returns a normalized ToolExecution
// record. Every failure — unknown tool, unsafe fetch URL, protocol error,
// transport error, timeout, or a canceled ctx — is folded into the
// record's Error/ErrorCode/Success fields; Dispatch never aborts the turn.
func (d *Dispatcher) Dispatch(ctx context.Context, requestID string, tc ToolCall) ToolExecution {
	tracer := d.Tracer
	if tracer == nil {
		tracer = noopTracer{}
	}
	ctx, span := tracer.Start(ctx, "wren.tool.dispatch",
		StringAttr("tool.name", tc.Name),
		StringAttr("request_id", requestID))
	defer span.End()

	d.fireStart(tc.Name, tc.Arguments)

	if !toolWhitelist[tc.Name] {
		exec := ToolExecution{
			ToolName:  tc.Name,
			Arguments: tc.Arguments,
			Error:     "unknown tool: " + tc.Name,
			ErrorCode: CodeInvalidTool,
			Success:   false,
			Timestamp: time.Now(),
			RequestID: requestID,
		}
		span.SetAttr(BoolAttr("success", false), StringAttr("reason", "unknown_tool"))
		d.fireComplete(tc.Name, nil, false)
		return exec
	}

	if tc.Name == "fetch_page" {
		rawURL, _ := tc.Arguments["url"].(string)
		if agentErr := validateFetchURL(rawURL); agentErr != nil {
			exec := ToolExecution{
				ToolName:  tc.Name,
				Arguments: tc.Arguments,
				Error:     agentErr.Message,
				ErrorCode: agentErr.Code,
				Success:   false,
				Timestamp: time.Now(),
				RequestID: requestID,
			}
			span.SetAttr(BoolAttr("success", false), StringAttr("reason", string(agentErr.Code)))
			d.fireComplete(tc.Name, nil, false)
			return exec
		}
	}

	args := injectDefaults(tc.Name, tc.Arguments, d.FetchExtractMode)

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := safeCall(callCtx, d.Client, requestID, tc.Name, args)
	duration := time.Since(start)

	exec := ToolExecution{
		ToolName:   tc.Name,
		Arguments:  args,
		DurationMS: float64(duration.Microseconds()) / 1000.0,
		Timestamp:  start,
		RequestID:  requestID,
	}

	switch {
	case err == nil:
		exec.Result = result
		exec.Success = true
		span.SetAttr(BoolAttr("success", true))
		d.fireComplete(tc.Name, result, true)
	default:
		exec.Error = errorMessage(err)
		exec.ErrorCode = classifyToolError(tc.Name, err)
		exec.Success = false
		span.Error(err)
		d.fireComplete(tc.Name, nil, false)
	}

	return exec
}

// classifyToolError derives a stable Code from a dispatch failure, taking
// into account both the error class (timeout, transport, protocol) and the
// tool family (search vs. fetch vs. notes), mirroring the per-family error
// codes the source implementation's errors/codes.py enumerates.
func classifyToolError(name string, err error) Code {
	var svcErr *ServiceError
	var protoErr *ToolProtocolError
	var timeoutErr *ErrTimeout

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.As(err, &timeoutErr):
		switch name {
		case "web_search":
			return CodeSearchTimeout
		case "fetch_page":
			return CodeFetchTimeout
		default:
			return CodeInternal
		}
	case errors.As(err, &svcErr):
		return CodeToolServerUnavailable
	case errors.As(err, &protoErr):
		switch name {
		case "web_search":
			return CodeSearchFailed
		case "fetch_page":
			return CodeFetchFailed
		case "save_note":
			return CodeNoteSaveFailed
		case "list_notes", "get_note":
			return CodeNotesQueryFailed
		default:
			return CodeToolFailed
		}
	default:
		return CodeInternal
	}
}

// safeCall wraps Client.Call with panic recovery, converting a panicking
// tool client into an ordinary error result rather than crashing the loop.
func safeCall(ctx context.Context, client ToolClient, requestID, name string, args map[string]any) (result map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("tool client panic")
		}
	}()
	return client.Call(ctx, requestID, name, args)
}

// errorMessage extracts a human-readable message from a dispatch error,
// preferring the JSON-RPC protocol message over the raw transport error
// text when both are available.
func errorMessage(err error) string {
	var protoErr *ToolProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.Message
	}
	return err.Error()
}

// injectDefaults fills in argument defaults the orchestrator is
// responsible for before invoking the tool client. Currently only
// fetch_page's extract_mode.
func injectDefaults(name string, args map[string]any, fetchExtractMode FetchExtractMode) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	if name == "fetch_page" {
		if _, ok := out["extract_mode"]; !ok {
			mode := fetchExtractMode
			if mode == "" {
				mode = ExtractText
			}
			out["extract_mode"] = string(mode)
		}
	}
	return out
}

func (d *Dispatcher) fireStart(name string, args map[string]any) {
	if d.OnStart == nil {
		return
	}
	defer func() { recover() }()
	d.OnStart(name, args)
}

func (d *Dispatcher) fireComplete(name string, result map[string]any, success bool) {
	if d.OnComplete == nil {
		return
	}
	defer func() { recover() }()
	d.OnComplete(name, result, success)
}
