package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
)

// Route names the retrieval channels that contributed to an answer.
type Route string

const (
	RouteBoth       Route = "both"
	RouteVectorOnly Route = "vector_only"
	RouteGraphOnly  Route = "graph_only"
	RouteNone       Route = "none"
	RouteError      Route = "error"
)

const (
	DefaultVectorK         = 5
	DefaultGraphMaxResults = 5

	DefaultVectorTimeout   = 10 * time.Second
	DefaultGraphTimeout    = 5 * time.Second
	DefaultGenerateTimeout = 60 * time.Second
)

// SourceDetails describes where an answer came from.
type SourceDetails struct {
	VectorResults []string `json:"vector_results"`
	GraphResults  []string `json:"graph_results"`
	Query         string   `json:"query"`
	Route         Route    `json:"route"`
	RequestID     string   `json:"request_id,omitempty"`
}

// Router answers questions from vector search and graph query results.
// Build it once at startup and share it; it holds no per-query state.
type Router struct {
	vector rag.VectorSearcher
	graph  rag.GraphQuerier
	gen    rag.Generator

	vectorK         int
	graphMaxResults int
	vectorTimeout   time.Duration
	graphTimeout    time.Duration
	generateTimeout time.Duration
}

// RouterOption configures a Router.
type RouterOption func(*Router)

func WithVectorK(k int) RouterOption {
	return func(r *Router) { r.vectorK = k }
}

func WithGraphMaxResults(n int) RouterOption {
	return func(r *Router) { r.graphMaxResults = n }
}

// WithVectorTimeout bounds each vector search. Zero disables the limit.
func WithVectorTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.vectorTimeout = d }
}

// WithGraphTimeout bounds each graph query. Zero disables the limit.
func WithGraphTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.graphTimeout = d }
}

// WithGenerateTimeout bounds each generation call. Zero disables the limit.
func WithGenerateTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.generateTimeout = d }
}

// NewRouter creates a router. A nil vector searcher or graph querier
// contributes no results; a nil generator fails every query.
func NewRouter(vector rag.VectorSearcher, graph rag.GraphQuerier, gen rag.Generator, opts ...RouterOption) *Router {
	r := &Router{
		vector:          vector,
		graph:           graph,
		gen:             gen,
		vectorK:         DefaultVectorK,
		graphMaxResults: DefaultGraphMaxResults,
		vectorTimeout:   DefaultVectorTimeout,
		graphTimeout:    DefaultGraphTimeout,
		generateTimeout: DefaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process answers query. It never returns an error and never panics: any
// failure, timeout or panic in retrieval or generation yields route "error",
// empty result lists and an "Error processing query: ..." response.
func (r *Router) Process(ctx context.Context, query string) (answer string, details SourceDetails) {
	reqID := uuid.NewString()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "medgraph.router.process",
		trace.WithAttributes(attribute.String("medgraph.request_id", reqID)))
	defer span.End()

	var failErr error
	defer func() {
		if p := recover(); p != nil {
			failErr = fmt.Errorf("panic: %v", p)
			answer, details = failure(query, failErr)
		}
		if failErr != nil {
			span.RecordError(failErr)
			span.SetStatus(codes.Error, failErr.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		details.RequestID = reqID
		span.SetAttributes(
			attribute.String("medgraph.route", string(details.Route)),
			attribute.Int("medgraph.vector_results", len(details.VectorResults)),
			attribute.Int("medgraph.graph_results", len(details.GraphResults)),
		)
		routerQueries.WithLabelValues(string(details.Route)).Inc()
		routerDuration.Observe(time.Since(start).Seconds())
	}()

	answer, details, failErr = r.process(ctx, query)
	if failErr != nil {
		log.Warn("request %s: query failed: %v", reqID, failErr)
		return failure(query, failErr)
	}
	log.Info("request %s: route=%s vector=%d graph=%d", reqID, details.Route, len(details.VectorResults), len(details.GraphResults))
	return answer, details
}

const errorPrefix = "Error processing query: "

func failure(query string, err error) (string, SourceDetails) {
	return errorPrefix + err.Error(), SourceDetails{
		VectorResults: []string{},
		GraphResults:  []string{},
		Query:         query,
		Route:         RouteError,
	}
}

func (r *Router) process(ctx context.Context, query string) (string, SourceDetails, error) {
	if strings.TrimSpace(query) == "" {
		return "", SourceDetails{}, rag.ErrEmptyQuery
	}

	vectorResults, graphResults := []string{}, []string{}
	g, gctx := errgroup.WithContext(ctx)
	if r.vector != nil {
		g.Go(func() error {
			res, err := call(gctx, r.vectorTimeout, "vector search", func(ctx context.Context) ([]string, error) {
				return r.vector.Search(ctx, query, r.vectorK)
			})
			if res != nil {
				vectorResults = res
			}
			return err
		})
	}
	if r.graph != nil {
		g.Go(func() error {
			res, err := call(gctx, r.graphTimeout, "graph query", func(ctx context.Context) ([]string, error) {
				return r.graph.Query(ctx, query, r.graphMaxResults)
			})
			if res != nil {
				graphResults = res
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return "", SourceDetails{}, err
	}

	if r.gen == nil {
		return "", SourceDetails{}, fmt.Errorf("%w: no generator configured", rag.ErrModel)
	}
	prompt := BuildPrompt(query, BuildContext(vectorResults, graphResults))
	answer, err := call(ctx, r.generateTimeout, "generation", func(ctx context.Context) (string, error) {
		return r.gen.Generate(ctx, prompt)
	})
	if err != nil {
		return "", SourceDetails{}, err
	}

	return answer, SourceDetails{
		VectorResults: vectorResults,
		GraphResults:  graphResults,
		Query:         query,
		Route:         ClassifyRoute(vectorResults, graphResults),
	}, nil
}

// ClassifyRoute names the channels that returned results.
func ClassifyRoute(vectorResults, graphResults []string) Route {
	switch {
	case len(vectorResults) > 0 && len(graphResults) > 0:
		return RouteBoth
	case len(vectorResults) > 0:
		return RouteVectorOnly
	case len(graphResults) > 0:
		return RouteGraphOnly
	}
	return RouteNone
}

// call runs fn under timeout in its own goroutine, so a capability that
// ignores its context or panics still yields an error.
func call[T any](ctx context.Context, timeout time.Duration, name string, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		v, err := fn(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var zero T
			return zero, fmt.Errorf("%s: %w", name, res.err)
		}
		return res.val, nil
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%s: %w", name, ctx.Err())
	}
}
