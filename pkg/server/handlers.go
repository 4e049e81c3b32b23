package server

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/noisegraph/pkg/cache"
	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/kinds"
	"github.com/matzehuels/noisegraph/pkg/render/dot"
	"github.com/matzehuels/noisegraph/pkg/script"
)

type sessionResponse struct {
	ID    string `json:"id"`
	Nodes int    `json:"nodes"`
	Links int    `json:"links"`
}

type connectRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Commit bool   `json:"commit"`
}

type connectResponse struct {
	OK   bool            `json:"ok"`
	Link *graph.LinkView `json:"link,omitempty"`
}

type tickResponse struct {
	Visited    int  `json:"visited"`
	Recomputed int  `json:"recomputed"`
	Pending    int  `json:"pending"`
	Failed     int  `json:"failed"`
	Deferred   int  `json:"deferred"`
	Ticks      int  `json:"ticks"`
	Settled    bool `json:"settled"`
}

type errorResponse struct {
	Code  errs.Code `json:"code"`
	Error string    `json:"error"`
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) {
	var resp sessionResponse
	_ = s.sess.Do(func(env *script.Env) error {
		resp = sessionResponse{
			ID:    s.sess.ID,
			Nodes: env.Store.NodeCount(),
			Links: env.Store.LinkCount(),
		}
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listNodes(w http.ResponseWriter, _ *http.Request) {
	var views []graph.NodeView
	_ = s.sess.Do(func(env *script.Env) error {
		views = env.Store.State().Nodes
		return nil
	})
	writeJSON(w, http.StatusOK, views)
}

// withNode resolves the {node} URL parameter and runs fn under the session
// lock.
func (s *Server) withNode(r *http.Request, fn func(*script.Env, graph.NodeID) error) error {
	ref := chi.URLParam(r, "node")
	return s.sess.Do(func(env *script.Env) error {
		id, err := resolveNode(env, ref)
		if err != nil {
			return err
		}
		return fn(env, id)
	})
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	var view graph.NodeView
	err := s.withNode(r, func(env *script.Env, id graph.NodeID) error {
		n, ok := env.Store.Node(id)
		if !ok {
			return errs.New(errs.ErrCodeUnknownID, "no node %s", id)
		}
		view = env.Store.NodeView(n)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) setParams(w http.ResponseWriter, r *http.Request) {
	var params map[string]any
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode params"))
		return
	}
	var view graph.NodeView
	err := s.withNode(r, func(env *script.Env, id graph.NodeID) error {
		for _, name := range slices.Sorted(maps.Keys(params)) {
			if err := env.Store.SetParam(id, name, params[name]); err != nil {
				return err
			}
		}
		n, _ := env.Store.Node(id)
		view = env.Store.NodeView(n)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) markDirty(w http.ResponseWriter, r *http.Request) {
	err := s.withNode(r, func(env *script.Env, id graph.NodeID) error {
		return env.Store.MarkDirty(id)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	var (
		buf bytes.Buffer
		rev uint64
	)
	err := s.withNode(r, func(env *script.Env, id graph.NodeID) error {
		n, ok := env.Store.Node(id)
		if !ok {
			return errs.New(errs.ErrCodeUnknownID, "no node %s", id)
		}
		rk, ok := n.Kind().(*kinds.Render)
		if !ok {
			return errs.New(errs.ErrCodeInvalidInput, "node %q is a %s, not a render", n.Name(), n.KindName())
		}
		_, rev = rk.Image()
		return rk.EncodePNG(&buf)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Revision", strconv.FormatUint(rev, 10))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) listLinks(w http.ResponseWriter, _ *http.Request) {
	var views []graph.LinkView
	_ = s.sess.Do(func(env *script.Env) error {
		views = env.Store.State().Links
		return nil
	})
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode connect request"))
		return
	}
	var resp connectResponse
	err := s.sess.Do(func(env *script.Env) error {
		from, err := resolvePin(env, req.From)
		if err != nil {
			return err
		}
		to, err := resolvePin(env, req.To)
		if err != nil {
			return err
		}
		id, err := env.Store.TryConnect(from, to, req.Commit)
		if err != nil {
			return err
		}
		resp.OK = true
		if l, ok := env.Store.Link(id); ok {
			v := env.Store.LinkView(l)
			resp.Link = &v
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Link != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	id, err := graph.ParseLinkID(chi.URLParam(r, "link"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeUnknownLink, err, "bad link id"))
		return
	}
	commit := r.URL.Query().Get("check") != "true"
	err = s.sess.Do(func(env *script.Env) error {
		return env.Store.Disconnect(id, commit)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	settle := r.URL.Query().Get("settle") == "true"
	// Stats from a settle are summed over passes; a nil error means the
	// last pass settled.
	stats, ticks, err := s.sess.tick(r.Context(), settle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickResponse{
		Visited:    stats.Visited,
		Recomputed: stats.Recomputed,
		Pending:    stats.Pending,
		Failed:     stats.Failed,
		Deferred:   stats.Deferred,
		Ticks:      ticks,
		Settled:    settle || stats.Settled(),
	})
}

// dotSource snapshots the graph under the lock.
func (s *Server) dotSource(r *http.Request) string {
	opts := dot.Options{Detailed: r.URL.Query().Get("detailed") == "true"}
	var src string
	_ = s.sess.Do(func(env *script.Env) error {
		src = dot.ToDOT(env.Store.Snapshot(), opts)
		return nil
	})
	return src
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(s.dotSource(r)))
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	src := s.dotSource(r)
	key := cache.Key("svg", src)
	data, hit, err := cache.GetOrCompute(r.Context(), s.cache, key, s.svgTTL, func() ([]byte, error) {
		return dot.RenderSVG(r.Context(), src)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", cacheStatus(hit))
	_, _ = w.Write(data)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Code: code, Error: errs.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeUnknownID, errs.ErrCodeUnknownPin, errs.ErrCodeUnknownLink, errs.ErrCodeUnknownKind:
		return http.StatusNotFound
	case errs.ErrCodeSameNode, errs.ErrCodeDirectionMismatch, errs.ErrCodeTypeMismatch,
		errs.ErrCodeDestinationAlreadyConnected, errs.ErrCodeIncompatibleSourceKind, errs.ErrCodeWouldCreateCycle:
		return http.StatusConflict
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidParam, errs.ErrCodeInvalidScript,
		errs.ErrCodeInvalidFormat, errs.ErrCodeFileNotFound:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
