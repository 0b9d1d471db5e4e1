package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `form:"name" json:"name"`
}

type echoResponse struct {
	Name      string `json:"name"`
	RequestID string `json:"request_id"`
}

func newTestRouter() *Router {
	r := New(context.Background())
	GET(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Name: req.Name, RequestID: xcontext.RequestID(ctx)}, nil
	})
	POST(r, "/fail", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errorx.New(errorx.RoundClosed, "Lottery #%d is closed", 1)
	})
	POST(r, "/internal", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, context.Canceled
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) response {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_GET(t *testing.T) {
	h := newTestRouter().Handler([]string{"*"})
	resp := do(t, h, http.MethodGet, "/echo?name=alice", "")
	require.Equal(t, int64(0), resp.Code)

	data := resp.Data.(map[string]any)
	require.Equal(t, "alice", data["name"])
	require.NotEmpty(t, data["request_id"])
}

func TestRouter_Errors(t *testing.T) {
	h := newTestRouter().Handler([]string{"*"})

	resp := do(t, h, http.MethodPost, "/fail", `{"name":"bob"}`)
	require.Equal(t, int64(errorx.RoundClosed), resp.Code)
	require.Equal(t, "Lottery #1 is closed", resp.Error)

	resp = do(t, h, http.MethodPost, "/internal", `{}`)
	require.Equal(t, int64(errorx.Unknown.Code), resp.Code)

	resp = do(t, h, http.MethodPost, "/fail", `not json`)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
}
