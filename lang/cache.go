package lang

import (
	"context"
	"io"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// cacheKey identifies a parse. The name is part of the key because it
// appears in parse errors.
type cacheKey struct {
	sum  xxh3.Uint128
	name string
}

// parsed is the outcome of parsing one source. Statements are never
// mutated after parsing, so ASTs built from the same entry share them.
type parsed struct {
	once  sync.Once
	stmts []Stmt
	err   error
}

// MaxCachedParses bounds the number of parses kept. The least recently used
// entry is dropped when a new source would exceed it.
const MaxCachedParses = 256

// parseCache holds recently parsed scripts. Build files read through subdir
// are parsed again for each setup of the same project, and the REPL reloads
// files on request.
var parseCache = func() *lru.Cache[cacheKey, *parsed] {
	c, err := lru.New[cacheKey, *parsed](MaxCachedParses)
	if err != nil {
		panic(err)
	}

	return c
}()

// ParseReader reads r to the end and parses it. Results are cached by
// content and source name.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*AST, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	return parseCached(ctx, string(data), opts...)
}

func parseCached(ctx context.Context, source string, opts ...Option) (*AST, error) {
	ast := new(AST)
	applyOptions(ast, opts...)

	key := cacheKey{sum: xxh3.HashString128(source), name: ast.name}

	entry, hit := parseCache.Get(key)
	if !hit {
		fresh := new(parsed)

		if prev, ok, _ := parseCache.PeekOrAdd(key, fresh); ok {
			entry, hit = prev, true
		} else {
			entry = fresh
		}
	}

	ast.logger.TraceContext(ctx, "parse cache",
		slog.String("source", ast.name),
		slog.Int("bytes", len(source)),
		slog.Uint64("hash", key.sum.Lo),
		slog.Bool("hit", hit),
	)

	entry.once.Do(func() {
		fresh, err := ParseString(ctx, source, opts...)
		if err != nil {
			entry.err = err

			return
		}

		entry.stmts = fresh.Statements
	})

	if entry.err != nil {
		return nil, entry.err
	}

	ast.Statements = entry.stmts

	return ast, nil
}

// ClearCache discards every cached parse.
func ClearCache() { parseCache.Purge() }

// CachedParses returns the number of parses currently cached.
func CachedParses() int { return parseCache.Len() }
