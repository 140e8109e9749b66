package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/semanticpay/shopagent/storefront"
)

// ErrInvalidQuantity is returned by AddItem for quantities < 1.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// PartialFailureError reports provider user errors from cart creation. The
// previous remote cart, if any, remains the system of record.
type PartialFailureError struct {
	UserErrors []storefront.UserError
}

func (e *PartialFailureError) Error() string {
	messages := make([]string, len(e.UserErrors))
	for i, userErr := range e.UserErrors {
		messages[i] = userErr.Message
	}
	return fmt.Sprintf("cart creation rejected by provider: %s", strings.Join(messages, "; "))
}

// IsPartialFailure reports whether err is (or wraps) a PartialFailureError.
func IsPartialFailure(err error) bool {
	var partial *PartialFailureError
	return errors.As(err, &partial)
}
