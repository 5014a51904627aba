/*
We pass context through context.Context between
app, middleware, and handlers. To do so, ledger defines
some common keys to store info, such as block height and
chain id. Each extension, such as sigs, may add its own
keys to enrich the context with specific data.

There should exist two functions for every XYZ of type T
that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may error/panic if the value was previously set
to avoid lower-level modules overwriting the value
(eg. height, header)
*/

package ledger

import (
	"context"
	"regexp"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the ledger module

const (
	contextKeyHeight contextKey = iota
	contextKeyChainID
	contextKeyLogger
	contextKeyBlockTime
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// WithHeight sets the block height for the context.
// It is set by the app at the beginning of every block.
func WithHeight(ctx context.Context, height int64) context.Context {
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current block height
// If none was set, returns (0, false)
func GetHeight(ctx context.Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithBlockTime sets the block time for the context. Block time is taken
// from the block header and is the same for every transaction in a block.
func WithBlockTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyBlockTime, t)
}

// BlockTime returns current block wall clock time as declared in the
// context. An error is returned if a block time is not present in the
// context.
func BlockTime(ctx context.Context) (time.Time, bool) {
	val, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	return val, ok
}

// WithChainID sets the chain id for the Context.
// panics if called with chain id already set
func WithChainID(ctx context.Context, chainID string) context.Context {
	if ctx.Value(contextKeyChainID) != nil {
		panic("Tried to set chain id twice")
	}
	if !IsValidChainID(chainID) {
		panic("Invalid chain id")
	}
	return context.WithValue(ctx, contextKeyChainID, chainID)
}

// GetChainID returns the current chain id
// panics if chain id not already set (should never happen)
func GetChainID(ctx context.Context) string {
	if x := ctx.Value(contextKeyChainID); x == nil {
		panic("Must have set chain id")
	}
	return ctx.Value(contextKeyChainID).(string)
}

// WithLogger sets the logger for this Context
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}
