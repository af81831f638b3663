// internal/blockchain/solbc/error_analyzer.go
package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// NoErrorCode marks a ProgramError that did not carry a custom error number.
const NoErrorCode = -1

var customErrorPattern = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)

// ProgramError is what a program reported when it rejected an instruction.
// The code is parsed, never interpreted.
type ProgramError struct {
	Code        int64
	Name        string
	Msg         string
	Instruction int
	Logs        []string
}

func (e *ProgramError) Error() string {
	var b strings.Builder
	b.WriteString("program error")
	if e.Instruction >= 0 {
		fmt.Fprintf(&b, " in instruction %d", e.Instruction)
	}
	if e.Code != NoErrorCode {
		fmt.Fprintf(&b, ": code %d (0x%x)", e.Code, e.Code)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " %s", e.Name)
	}
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	return b.String()
}

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// ErrorAnalyzer provides methods to analyze Solana transaction errors
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// FromRPCError extracts a program error from a send failure. Preflight
// simulation failures carry the instruction error and the program logs in
// the RPC error data; older nodes only put the hex code in the message.
// Transaction-level errors such as BlockhashNotFound or AccountNotFound
// name no program and are not reported.
func (ea *ErrorAnalyzer) FromRPCError(err error) (*ProgramError, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}

	var (
		pe   *ProgramError
		logs []string
	)
	if dataMap, ok := rpcErr.Data.(map[string]interface{}); ok {
		if rawLogs, ok := dataMap["logs"].([]interface{}); ok {
			for _, entry := range rawLogs {
				if s, ok := entry.(string); ok {
					logs = append(logs, s)
				}
			}
		}
		if raw := dataMap["err"]; isInstructionError(raw) {
			pe, _ = ea.FromStatusError(raw, logs)
		}
	}

	if pe == nil {
		pe = &ProgramError{Code: NoErrorCode, Instruction: -1, Logs: logs}
		if m := customErrorPattern.FindStringSubmatch(rpcErr.Message); m != nil {
			if code, perr := strconv.ParseInt(m[1], 16, 64); perr == nil {
				pe.Code = code
			}
		}
		ea.applyAnchorLogs(pe)
		if pe.Code == NoErrorCode && pe.Name == "" {
			return nil, false
		}
	}
	if pe.Msg == "" {
		pe.Msg = rpcErr.Message
	}
	return pe, true
}

// isInstructionError reports whether a status error was raised by an
// instruction rather than by the runtime before execution.
func isInstructionError(statusErr interface{}) bool {
	m, ok := statusErr.(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = m["InstructionError"]
	return ok
}

// FromStatusError converts the err field of a signature status or a
// simulation result. Any non-nil value yields a ProgramError.
//
// Example: {"InstructionError":[0,{"Custom":6000}]}
func (ea *ErrorAnalyzer) FromStatusError(statusErr interface{}, logs []string) (*ProgramError, bool) {
	if statusErr == nil {
		return nil, false
	}
	pe := &ProgramError{Code: NoErrorCode, Instruction: -1, Logs: logs}

	switch v := statusErr.(type) {
	case string:
		pe.Name = v
	case map[string]interface{}:
		if ie, ok := v["InstructionError"].([]interface{}); ok && len(ie) == 2 {
			if idx, ok := toInt64(ie[0]); ok {
				pe.Instruction = int(idx)
			}
			switch detail := ie[1].(type) {
			case string:
				pe.Name = detail
			case map[string]interface{}:
				if custom, ok := detail["Custom"]; ok {
					if code, ok := toInt64(custom); ok {
						pe.Code = code
					}
				} else {
					for name := range detail {
						pe.Name = name
					}
				}
			}
		} else {
			for name := range v {
				pe.Name = name
			}
		}
	default:
		pe.Name = fmt.Sprintf("%v", v)
	}

	ea.applyAnchorLogs(pe)
	return pe, true
}

// applyAnchorLogs enriches pe from an "AnchorError occurred" log line.
func (ea *ErrorAnalyzer) applyAnchorLogs(pe *ProgramError) {
	for _, line := range pe.Logs {
		if !strings.Contains(line, "AnchorError") {
			continue
		}
		anchorErr := ea.parseAnchorErrorLog(line)
		if pe.Code == NoErrorCode && anchorErr.Code != 0 {
			pe.Code = int64(anchorErr.Code)
		}
		if anchorErr.Name != "" {
			pe.Name = anchorErr.Name
		}
		if anchorErr.Msg != "" {
			pe.Msg = anchorErr.Msg
		}

		ea.logger.Debug("Anchor error detected",
			zap.Int("code", anchorErr.Code),
			zap.String("name", anchorErr.Name),
			zap.String("message", anchorErr.Msg))
		return
	}
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
func (ea *ErrorAnalyzer) parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if parts := strings.SplitN(logStr, "Error Number:", 2); len(parts) == 2 {
		numParts := strings.SplitN(parts[1], ".", 2)
		if n, err := strconv.Atoi(strings.TrimSpace(numParts[0])); err == nil {
			result.Code = n
		}
	}

	if parts := strings.SplitN(logStr, "Error Code:", 2); len(parts) == 2 {
		nameParts := strings.SplitN(parts[1], ".", 2)
		result.Name = strings.TrimSpace(nameParts[0])
	}

	if parts := strings.SplitN(logStr, "Error Message:", 2); len(parts) == 2 {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(parts[1]), ".")
	}

	return result
}

// FormatErrorAnalysis formats a program error for logging or display
func (ea *ErrorAnalyzer) FormatErrorAnalysis(pe *ProgramError) string {
	jsonBytes, err := json.MarshalIndent(pe, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error formatting analysis: %v", err)
	}
	return string(jsonBytes)
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
