// Package clientapi is spec.md §6's Client RPC façade: Status, Query,
// ListTables, GetTable, exposed as HTTP/JSON endpoints over gin, the
// teacher's own web framework (its go.mod requires gin-gonic/gin and
// rs/cors even though the retrieval pack didn't keep the file that wired
// them -- see DESIGN.md).
package clientapi

import (
	"bufio"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/log"
	"github.com/raftsql/raftsql/internal/raft"
	"github.com/raftsql/raftsql/internal/statemachine"
	"github.com/raftsql/raftsql/internal/value"
)

var clog = log.With("clientapi")

// Server wires spec.md §6's Client RPC onto a node's Raft submission path
// and its local KV store (for the metadata-only ListTables/GetTable reads,
// which are served from local state rather than routed through the log --
// see DESIGN.md Open Questions).
type Server struct {
	node *raft.Node
	kv   *kvstore.Store
}

// New constructs a Server.
func New(node *raft.Node, kv *kvstore.Store) *Server {
	return &Server{node: node, kv: kv}
}

// Router builds the gin engine with CORS applied, matching leifdb's
// go.mod pairing of gin-gonic/gin with rs/cors.
func (s *Server) Router() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestID())

	r.GET("/status", s.handleStatus)
	r.POST("/query", s.handleQuery)
	r.GET("/tables", s.handleListTables)
	r.GET("/tables/:name", s.handleGetTable)

	return cors.Default().Handler(r)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// statusResponse is spec.md §6's Status payload.
type statusResponse struct {
	NodeID     string `json:"node_id"`
	Version    string `json:"version"`
	LeaderHint string `json:"leader_hint"`
	Term       uint64 `json:"term"`
	RequestID  string `json:"request_id"`
}

const version = "0.1.0"

func (s *Server) handleStatus(c *gin.Context) {
	st := s.node.Status()
	c.JSON(http.StatusOK, statusResponse{
		NodeID:     st.NodeID,
		Version:    version,
		LeaderHint: st.LeaderHint,
		Term:       st.Term,
		RequestID:  c.GetString("requestID"),
	})
}

type queryRequest struct {
	SQL string `json:"sql"`
}

// wireField is spec.md §6's Row field oneof, represented in JSON as a
// struct with at most one member set; a nil *wireField in a row's fields
// slice is how Null is encoded ("absent value in the oneof").
type wireField struct {
	Bool   *bool    `json:"bool,omitempty"`
	Int64  *int64   `json:"int64,omitempty"`
	Double *float64 `json:"double,omitempty"`
	String *string  `json:"string,omitempty"`
}

// wireRow is one line of the Query response's newline-delimited JSON
// stream; once Error is set, no further rows follow (spec.md §7).
type wireRow struct {
	Error  string       `json:"error,omitempty"`
	Fields []*wireField `json:"fields,omitempty"`
}

func toWireField(v value.Value) *wireField {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBoolean:
		b := v.Bool()
		return &wireField{Bool: &b}
	case value.KindInteger:
		i := v.Int()
		return &wireField{Int64: &i}
	case value.KindFloat:
		f := v.Float()
		return &wireField{Double: &f}
	default:
		str := v.Str()
		return &wireField{String: &str}
	}
}

// handleQuery implements spec.md §6's Query(sql) -> stream of Row | error.
// Every query, mutating or not, is submitted through the Raft log (spec.md
// §4.1 "read-only queries are also routed through the log").
func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wireRow{Error: err.Error()})
		return
	}

	reqID := c.GetString("requestID")
	qlog := clog.With().Str("requestID", reqID).Logger()
	qlog.Info().Str("sql", req.SQL).Msg("query submitted")

	raw, err := s.node.Submit(c.Request.Context(), []byte(req.SQL))
	if err != nil {
		writeNDJSON(c, wireRow{Error: err.Error()})
		return
	}
	result, ok := raw.(*statemachine.Result)
	if !ok || result == nil {
		writeNDJSON(c, wireRow{Error: "statemachine: malformed result"})
		return
	}
	if result.Err != nil {
		writeNDJSON(c, wireRow{Error: result.Err.Error()})
		return
	}

	c.Status(http.StatusOK)
	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	w := bufio.NewWriter(c.Writer)
	enc := json.NewEncoder(w)
	for _, row := range result.Rows {
		fields := make([]*wireField, len(row))
		for i, v := range row {
			fields[i] = toWireField(v)
		}
		if err := enc.Encode(wireRow{Fields: fields}); err != nil {
			qlog.Error().Err(err).Msg("failed to stream row")
			return
		}
	}
	w.Flush()
}

func writeNDJSON(c *gin.Context, row wireRow) {
	c.Status(http.StatusOK)
	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	json.NewEncoder(c.Writer).Encode(row)
}

func (s *Server) handleListTables(c *gin.Context) {
	names := catalog.ListTables(s.kv)
	c.JSON(http.StatusOK, gin.H{"tables": names})
}

func (s *Server) handleGetTable(c *gin.Context) {
	name := c.Param("name")
	t, ok := catalog.GetTable(s.kv, name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	c.String(http.StatusOK, catalog.CanonicalCreateTable(t))
}
