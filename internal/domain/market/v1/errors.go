package marketv1

import "errors"

var (
	// ErrInvalidQuantity rejects orders whose quantity is not positive before
	// they reach the book.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrCancelNotFound reports a cancellation whose price level or order ID
	// matched nothing in the book. The book is left unchanged.
	ErrCancelNotFound = errors.New("no resting order matches cancel request")

	// ErrUnknownSymbol reports a request for a symbol this instance does not trade.
	ErrUnknownSymbol = errors.New("symbol is not configured")

	// ErrBookCorrupted reports a negative aggregate quantity. It is the only
	// fatal condition for an instrument thread.
	ErrBookCorrupted = errors.New("order book aggregate quantity went negative")
)
