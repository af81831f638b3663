// internal/blockchain/solbc/errors.go
package solbc

import "fmt"

// NodeError представляет ошибку RPC с дополнительным контекстом
type NodeError struct {
	Err     error
	NodeURL string
	Method  string
}

// Error реализует интерфейс error
func (e *NodeError) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewNodeError создает новую ошибку RPC
func NewNodeError(err error, nodeURL, method string) error {
	return &NodeError{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}
