package sbswagger

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/go-openapi/loads"
	"github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github.com/pkg/errors"

	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	sbhttpserver "github.com/avdrh/abtest/pkg/serverbase/http/server"
)

// Document is a validated swagger 2.0 document.
type Document struct {
	doc  *loads.Document
	json []byte
}

// Load parses a YAML or JSON swagger document and validates it against the swagger 2.0 schema.
func Load(data []byte) (*Document, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse swagger document")
	}
	doc, err := loads.Analyzed(json.RawMessage(raw), "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to analyze swagger document")
	}
	if err := validate.Spec(doc, strfmt.Default); err != nil {
		return nil, errors.Wrap(err, "invalid swagger document")
	}
	return &Document{doc: doc, json: raw}, nil
}

func (d *Document) BasePath() string {
	return d.doc.BasePath()
}

func (d *Document) JSON() []byte {
	return d.json
}

// Operations lists "METHOD path" for every documented operation, paths relative to the base path.
func (d *Document) Operations() []string {
	ops := make([]string, 0)
	for path, item := range d.doc.Spec().Paths.Paths {
		for method, op := range map[string]*spec.Operation{
			http.MethodGet:    item.Get,
			http.MethodPost:   item.Post,
			http.MethodPut:    item.Put,
			http.MethodPatch:  item.Patch,
			http.MethodDelete: item.Delete,
		} {
			if op != nil {
				ops = append(ops, method+" "+path)
			}
		}
	}
	sort.Strings(ops)
	return ops
}

// Server serves the document as JSON under the document's base path.
type Server struct {
	doc *Document
}

func New(doc *Document) *Server {
	return &Server{doc: doc}
}

func (s *Server) GetHandlers() []sbhttpserver.HandleDescription {
	return []sbhttpserver.HandleDescription{{
		Path:   s.doc.BasePath() + "/swagger.json",
		Method: http.MethodGet,
		Handler: func(request *sbhttpbase.Request) {
			request.Writer.Header().Set("Content-Type", "application/json")
			request.Writer.WriteHeader(http.StatusOK)
			_, _ = request.Writer.Write(s.doc.JSON())
		},
	}}
}

func (s *Server) Ready(ctx context.Context) error { return nil }
func (s *Server) Live(ctx context.Context) error  { return nil }
func (s *Server) Shutdown() error                 { return nil }

var _ sbhttpserver.Server = &Server{}
