package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/llm"
)

// Router selects which routes of a table apply to a query. Routing never
// fails a turn: implementations fall back to the full table rather than
// returning an error or an empty decision.
type Router interface {
	Route(ctx context.Context, query string) (Decision, error)
}

// StaticRouter selects every route, always.
type StaticRouter struct {
	table Table
}

// NewStaticRouter creates a StaticRouter over the table.
func NewStaticRouter(table Table) (*StaticRouter, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &StaticRouter{table: table}, nil
}

// Route returns all route ids in declaration order.
func (r *StaticRouter) Route(ctx context.Context, query string) (Decision, error) {
	return Decision{IDs: r.table.IDs(), Rationale: "static: all routes"}, nil
}

var _ Router = (*StaticRouter)(nil)

// ModelRouter asks a chat model to classify the query against the route
// descriptions. Any model failure, unparseable reply, or empty selection
// degrades to the full table with a warning; Route never surfaces an error.
type ModelRouter struct {
	model  llm.ChatModel
	table  Table
	logger *zap.Logger
}

// NewModelRouter creates a ModelRouter.
func NewModelRouter(model llm.ChatModel, table Table, logger *zap.Logger) (*ModelRouter, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelRouter{model: model, table: table, logger: logger}, nil
}

// Route classifies the query. The selection keeps table declaration order
// whatever order the model lists ids in.
func (r *ModelRouter) Route(ctx context.Context, query string) (Decision, error) {
	reply, err := r.model.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Text: r.classificationPrompt()},
		{Role: llm.RoleUser, Text: query},
	})
	if err != nil {
		r.logger.Warn("routing model failed, falling back to all routes", zap.Error(err))
		return Decision{IDs: r.table.IDs(), Rationale: "fallback: model failure"}, nil
	}

	selected := r.parseSelection(reply)
	if len(selected) == 0 {
		r.logger.Warn("routing reply matched no known route, falling back to all routes",
			zap.String("reply", reply),
		)
		return Decision{IDs: r.table.IDs(), Rationale: "fallback: unparseable selection"}, nil
	}

	r.logger.Debug("routed query",
		zap.Strings("selected", selected),
		zap.String("reply", reply),
	)
	return Decision{IDs: selected, Rationale: "model: " + strings.TrimSpace(reply)}, nil
}

// classificationPrompt lists the routes the model may pick from.
func (r *ModelRouter) classificationPrompt() string {
	var b strings.Builder
	b.WriteString("You route user questions to knowledge sources. The available sources are:\n")
	for _, route := range r.table {
		fmt.Fprintf(&b, "- %s: %s\n", route.ID, route.Description)
	}
	b.WriteString("Reply with the ids of every relevant source, separated by commas. Reply with ids only, no explanation.")
	return b.String()
}

// parseSelection extracts known route ids from the model reply, in table
// declaration order. Unknown tokens are ignored.
func (r *ModelRouter) parseSelection(reply string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(reply), func(c rune) bool {
		return !isIDRune(c)
	})
	mentioned := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		mentioned[tok] = struct{}{}
	}

	var selected []string
	for _, route := range r.table {
		if _, ok := mentioned[strings.ToLower(route.ID)]; ok {
			selected = append(selected, route.ID)
		}
	}
	return selected
}

func isIDRune(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		return true
	}
	return false
}

var _ Router = (*ModelRouter)(nil)
