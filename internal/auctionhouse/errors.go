// =============================
// File: internal/auctionhouse/errors.go
// =============================
package auctionhouse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ErrMissingAccount is wrapped by every MissingAccountError.
var ErrMissingAccount = errors.New("required account not set")

// MissingAccountError reports an input account left zero.
type MissingAccountError struct {
	Account string
}

func (e *MissingAccountError) Error() string {
	return fmt.Sprintf("%s: %v", e.Account, ErrMissingAccount)
}

func (e *MissingAccountError) Unwrap() error {
	return ErrMissingAccount
}

func missing(account string) error {
	return &MissingAccountError{Account: account}
}

// MismatchError reports an input account that disagrees with the address
// recomputed from the other inputs. The program would reject it.
type MismatchError struct {
	Account string
	Given   solana.PublicKey
	Derived solana.PublicKey
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: given %s, expected %s", e.Account, e.Given, e.Derived)
}

// Stage names the submission step that failed.
type Stage string

const (
	StageEncode    Stage = "encode"
	StageBlockhash Stage = "blockhash"
	StageSign      Stage = "sign"
	StageValidate  Stage = "validate"
	StageSend      Stage = "send"
	StageConfirm   Stage = "confirm"
)

// SubmissionError is a failure to get the transaction accepted or confirmed:
// transport errors, timeouts and cancellation. The plan is still valid and
// may be submitted again. Signature is set once the transaction was signed.
type SubmissionError struct {
	Stage     Stage
	Signature solana.Signature
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature.IsZero() {
		return fmt.Sprintf("execute sale %s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("execute sale %s failed (signature %s): %v", e.Stage, e.Signature, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ProgramRejection means the network ran the transaction and a program
// refused it. Code is the custom error number when one was reported, or -1.
type ProgramRejection struct {
	Signature   solana.Signature
	Instruction int
	Code        int64
	Name        string
	Message     string
	Logs        []string
	Err         error
}

func (e *ProgramRejection) Error() string {
	var b strings.Builder
	b.WriteString("execute sale rejected")
	if e.Code >= 0 {
		fmt.Fprintf(&b, ": custom program error 0x%x", e.Code)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " (%s)", e.Name)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

func (e *ProgramRejection) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether resubmitting the same plan can succeed.
// Only submission failures qualify; derivation failures and program
// rejections repeat deterministically.
func IsRetryable(err error) bool {
	var rejection *ProgramRejection
	if errors.As(err, &rejection) {
		return false
	}
	var sub *SubmissionError
	if !errors.As(err, &sub) {
		return false
	}
	return sub.Stage != StageEncode && sub.Stage != StageValidate && sub.Stage != StageSign
}
